package catalog

// Flower is the canonical in-memory catalog record. The loose text fields
// stored in the database (keywords, emotions) are parsed into normalized
// string slices when the record is loaded, never inside the matching loop.
type Flower struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Symbolism    string   `json:"symbolism"`
	Emotions     []string `json:"emotions"`
	Keywords     []string `json:"keywords"`
	Color        string   `json:"color"`
	PricePerStem int      `json:"pricePerStem"`
	Stock        int      `json:"stock"`
}
