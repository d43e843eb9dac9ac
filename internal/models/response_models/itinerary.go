package response_models

type GeocodeResponse struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Formatted string  `json:"formatted"`
}

type BlockNarrativeResponse struct {
	WhyThis string   `json:"whyThis"`
	Tips    []string `json:"tips"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
