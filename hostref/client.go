package hostref

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"attnledger/core/types"
	"attnledger/hostapi"
)

var (
	_ hostapi.PublisherInfoStore  = (*Client)(nil)
	_ hostapi.PublisherStateStore = (*Client)(nil)
	_ hostapi.LedgerStateStore    = (*Client)(nil)
	_ hostapi.RegistryFetcher     = (*Client)(nil)
	_ hostapi.Clock               = (*Client)(nil)
	_ hostapi.Entropy             = (*Client)(nil)
	_ hostapi.GUIDGenerator       = (*Client)(nil)
	_ hostapi.Timer               = (*Client)(nil)
)

// Client is a reference hostapi implementation over a SQLite database,
// exercising gorm.io/gorm, glebarez/sqlite, and google/uuid from the domain
// stack (SPEC_FULL.md §3). It is a test/demo collaborator, not a production
// wallet or media resolver (§1 non-goal).
type Client struct {
	db         *gorm.DB
	registryURL string
	httpClient *http.Client

	randMu sync.Mutex
	rand   *rand.Rand
}

// Open creates (or attaches to) a SQLite database at path and migrates the
// reference schema, mirroring services/otc-gateway/server.go's DB-first
// construction style.
func Open(path string, registryURL string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("hostref: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&publisherRecordRow{}, &blobRow{}); err != nil {
		return nil, fmt.Errorf("hostref: migrate: %w", err)
	}
	return &Client{
		db:          db,
		registryURL: registryURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// LoadPublisherInfo implements hostapi.PublisherInfoStore.
func (c *Client) LoadPublisherInfo(ctx context.Context, filter types.Filter) (*types.PublisherInfo, bool, error) {
	var row publisherRecordRow
	err := c.db.WithContext(ctx).
		Where("id = ? AND month = ? AND year = ?", string(filter.ID), int(filter.Month), filter.Year).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("hostref: load publisher info: %w", err)
	}
	info, err := fromRow(row)
	if err != nil {
		return nil, false, err
	}
	return info, true, nil
}

// SavePublisherInfo implements hostapi.PublisherInfoStore.
func (c *Client) SavePublisherInfo(ctx context.Context, info *types.PublisherInfo) error {
	row, err := toRow(info)
	if err != nil {
		return err
	}
	row.UpdatedAt = time.Now()
	return c.db.WithContext(ctx).Save(&row).Error
}

// LoadPublisherInfoList implements hostapi.PublisherInfoStore's paginated
// query (SPEC_FULL.md §5 supplement).
func (c *Client) LoadPublisherInfoList(ctx context.Context, start, limit int, filter types.Filter) ([]*types.PublisherInfo, error) {
	q := c.db.WithContext(ctx).Model(&publisherRecordRow{})
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Month != 0 && filter.Month != types.MonthAny {
		q = q.Where("month = ?", int(filter.Month))
	}
	if filter.Category != 0 {
		q = q.Where("category & ? != 0", uint32(filter.Category))
	}

	var rows []publisherRecordRow
	if err := q.Offset(start).Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("hostref: list publisher info: %w", err)
	}

	out := make([]*types.PublisherInfo, 0, len(rows))
	for _, row := range rows {
		info, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	sortByOrderTerms(out, filter.OrderBy)
	return out, nil
}

func sortByOrderTerms(infos []*types.PublisherInfo, terms []types.OrderTerm) {
	if len(terms) == 0 {
		return
	}
	sort.SliceStable(infos, func(i, j int) bool {
		for _, term := range terms {
			less, equal := compareField(infos[i], infos[j], term.Field)
			if equal {
				continue
			}
			if term.Ascending {
				return less
			}
			return !less
		}
		return false
	})
}

func compareField(a, b *types.PublisherInfo, field string) (less bool, equal bool) {
	switch field {
	case "score":
		return a.Score < b.Score, a.Score == b.Score
	case "duration":
		return a.Duration < b.Duration, a.Duration == b.Duration
	case "visits":
		return a.Visits < b.Visits, a.Visits == b.Visits
	default:
		return a.ID < b.ID, a.ID == b.ID
	}
}

// LoadPublisherState implements hostapi.PublisherStateStore.
func (c *Client) LoadPublisherState(ctx context.Context) ([]byte, bool, error) {
	return c.loadBlob(ctx, blobNamePublisherState)
}

// SavePublisherState implements hostapi.PublisherStateStore.
func (c *Client) SavePublisherState(ctx context.Context, blob []byte) error {
	return c.saveBlob(ctx, blobNamePublisherState, blob)
}

// LoadLedgerState implements hostapi.LedgerStateStore.
func (c *Client) LoadLedgerState(ctx context.Context) ([]byte, bool, error) {
	return c.loadBlob(ctx, blobNameLedgerState)
}

// SaveLedgerState implements hostapi.LedgerStateStore.
func (c *Client) SaveLedgerState(ctx context.Context, blob []byte) error {
	return c.saveBlob(ctx, blobNameLedgerState, blob)
}

func (c *Client) loadBlob(ctx context.Context, name string) ([]byte, bool, error) {
	var row blobRow
	err := c.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("hostref: load blob %s: %w", name, err)
	}
	return row.Body, true, nil
}

func (c *Client) saveBlob(ctx context.Context, name string, body []byte) error {
	row := blobRow{Name: name, Body: body}
	return c.db.WithContext(ctx).Save(&row).Error
}

// FetchPublisherRegistry implements hostapi.RegistryFetcher by issuing an
// HTTP GET against the configured registry URL.
func (c *Client) FetchPublisherRegistry(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.registryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("hostref: build registry request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hostref: fetch registry: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hostref: registry fetch status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// SavePublishersList implements hostapi.RegistryFetcher's save half.
func (c *Client) SavePublishersList(ctx context.Context, body []byte) error {
	return c.saveBlob(ctx, "registry_body", body)
}

// Now implements hostapi.Clock.
func (c *Client) Now() uint64 {
	return uint64(time.Now().Unix())
}

// Int63n implements hostapi.Entropy.
func (c *Client) Int63n(n int64) int64 {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	if n <= 0 {
		return 0
	}
	return c.rand.Int63n(n)
}

// GenerateGUID implements hostapi.GUIDGenerator.
func (c *Client) GenerateGUID() string {
	return uuid.NewString()
}

// SetTimer implements hostapi.Timer with the standard library's single-shot
// timer, the same cancellable-callback shape as a host's SetTimer/OnTimer
// pair (spec §6).
func (c *Client) SetTimer(delaySeconds int, fire func()) func() {
	if delaySeconds < 0 {
		delaySeconds = 0
	}
	t := time.AfterFunc(time.Duration(delaySeconds)*time.Second, fire)
	return func() { t.Stop() }
}

func toRow(info *types.PublisherInfo) (publisherRecordRow, error) {
	contributions, err := json.Marshal(info.Contributions)
	if err != nil {
		return publisherRecordRow{}, fmt.Errorf("hostref: marshal contributions: %w", err)
	}
	return publisherRecordRow{
		ID:            string(info.ID),
		Month:         int(info.Month),
		Year:          info.Year,
		Duration:      info.Duration,
		Visits:        info.Visits,
		Score:         info.Score,
		Percent:       info.Percent,
		Weight:        info.Weight,
		Pinned:        info.Pinned,
		Category:      uint32(info.Category),
		FaviconURL:    info.FaviconURL,
		Verified:      info.Verified,
		Contributions: string(contributions),
	}, nil
}

func fromRow(row publisherRecordRow) (*types.PublisherInfo, error) {
	var contributions []types.ContributionInfo
	if row.Contributions != "" {
		if err := json.Unmarshal([]byte(row.Contributions), &contributions); err != nil {
			return nil, fmt.Errorf("hostref: unmarshal contributions: %w", err)
		}
	}
	return &types.PublisherInfo{
		ID:            types.PublisherId(row.ID),
		Month:         types.Month(row.Month),
		Year:          row.Year,
		Duration:      row.Duration,
		Visits:        row.Visits,
		Score:         row.Score,
		Percent:       row.Percent,
		Weight:        row.Weight,
		Pinned:        row.Pinned,
		Category:      types.Category(row.Category),
		FaviconURL:    row.FaviconURL,
		Verified:      row.Verified,
		Contributions: contributions,
	}, nil
}
