package domain

// FormattedAddress is a geography fragment rendered for storage.
type FormattedAddress struct {
	RegionCode int64
	Address    string
}
