package types

// TabSnapshot captures the browser tab state the aggregator needs to derive
// an attention sample (spec §3, §4.9).
type TabSnapshot struct {
	TabID      uint32
	Domain     string
	TLD        string
	Path       string
	FaviconURL string
	LocalMonth Month
	LocalYear  int
}
