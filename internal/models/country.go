package models

// Country is one supported target market. Code is the metrics provider's
// numeric geo-target identifier, not an ISO country code.
type Country struct {
	Code            string `json:"code" yaml:"code"`
	ISO             string `json:"iso" yaml:"iso"`
	Name            string `json:"name" yaml:"name"`
	DefaultLanguage string `json:"defaultLanguage" yaml:"default_language"`
	Currency        string `json:"currency" yaml:"currency"`
}
