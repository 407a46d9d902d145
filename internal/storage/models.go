// Package storage provides the phone catalog models and repositories.
package storage

// Phone is one catalog row. Every field except ModelName is free text that the
// catalog may leave NULL; nil means absent.
type Phone struct {
	ModelName   string  `json:"model_name"`
	ReleaseDate *string `json:"release_date"`
	Display     *string `json:"display"`
	Battery     *string `json:"battery"`
	Camera      *string `json:"camera"`
	RAM         *string `json:"ram"`
	Storage     *string `json:"storage"`
	Price       *string `json:"price"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
