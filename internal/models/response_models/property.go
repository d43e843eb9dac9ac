package response_models

type PropertyBrand struct {
	LogoURL   string `json:"logoUrl,omitempty"`
	Theme     string `json:"theme,omitempty"`
	AccentHex string `json:"accentHex,omitempty"`
}

type PropertyResponse struct {
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName"`
	City        string        `json:"city"`
	Timezone    string        `json:"timezone"`
	Brand       PropertyBrand `json:"brand"`
	Areas       []string      `json:"areas"`
}
