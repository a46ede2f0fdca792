package models

// Plan представляет тариф подписки из статического каталога.
type Plan struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration string  `json:"duration"` // Период списания, например "monthly"
}
