package coincap

// CoinCap v3 encodes numbers as JSON strings and times as epoch milliseconds.

// AssetData is one asset record.
type AssetData struct {
	ID                string `json:"id"`
	Rank              string `json:"rank"`
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Supply            string `json:"supply"`
	MaxSupply         string `json:"maxSupply"`
	MarketCapUSD      string `json:"marketCapUsd"`
	VolumeUSD24Hr     string `json:"volumeUsd24Hr"`
	PriceUSD          string `json:"priceUsd"`
	ChangePercent24Hr string `json:"changePercent24Hr"`
	VWAP24Hr          string `json:"vwap24Hr"`
	Explorer          string `json:"explorer"`
}

// AssetsResponse is returned by GET /assets.
type AssetsResponse struct {
	Timestamp int64       `json:"timestamp"`
	Data      []AssetData `json:"data"`
}

// AssetResponse is returned by GET /assets/{slug}.
type AssetResponse struct {
	Timestamp int64      `json:"timestamp"`
	Data      *AssetData `json:"data"`
}

// HistoryPoint is one entry of GET /assets/{slug}/history.
type HistoryPoint struct {
	PriceUSD string `json:"priceUsd"`
	Time     int64  `json:"time"`
	Date     string `json:"date"`
}

// HistoryResponse is returned by GET /assets/{slug}/history.
type HistoryResponse struct {
	Timestamp int64          `json:"timestamp"`
	Data      []HistoryPoint `json:"data"`
}

// PriceBySymbolResponse is returned by GET /price/bysymbol/{symbols}.
// Data holds one price per requested symbol, in request order.
type PriceBySymbolResponse struct {
	Timestamp int64    `json:"timestamp"`
	Data      []string `json:"data"`
}
