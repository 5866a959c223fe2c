package dto

type CategoryInput struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// SaveMarginSettingsInput replaces a merchant's registry wholesale; there is
// no partial-update API.
type SaveMarginSettingsInput struct {
	MetaKey    string          `json:"meta_key"`
	Categories []CategoryInput `json:"categories"`
}
