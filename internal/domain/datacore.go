package domain

// KlineData is the candle history of one symbol.
type KlineData struct {
	Symbol string   `json:"symbol"`
	Data   []Candle `json:"data"`
}

// Audit describes where a snapshot came from and what happened to it during analysis.
type Audit struct {
	Source         string   `json:"source,omitempty"`
	RunID          string   `json:"runId,omitempty"`
	FetchedAt      int64    `json:"fetchedAt,omitempty"`
	AnalyzedAt     int64    `json:"analyzedAt,omitempty"`
	SymbolCount    int      `json:"symbolCount,omitempty"`
	DroppedSymbols []string `json:"droppedSymbols,omitempty"`
}

// DataCoreRoot is the per-timeframe snapshot of all symbols.
// CloseTime is the master timestamp used for freshness checks.
type DataCoreRoot struct {
	Timeframe string      `json:"timeframe"`
	CloseTime int64       `json:"closeTime"`
	Audit     Audit       `json:"audit"`
	Data      []KlineData `json:"data"`
}
