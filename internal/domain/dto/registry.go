package dto

import (
	"fmt"
	"strconv"
	"strings"
)

// Required keys of registry responses. A response missing any of them means the registry
// contract has changed.
var (
	RegistryListKeys   = []string{"count", "next", "previous", "results", "date_info"}
	RegistryDetailKeys = []string{"full_name", "short_name", "inn", "kpp", "ogrn", "factual_address", "region_code"}
)

type RegistryListItem struct {
	RelativeAddr string `json:"relative_addr" validate:"required"`
	FullName     string `json:"full_name"`
	INN          string `json:"inn"`
	KPP          string `json:"kpp"`
	OGRN         string `json:"ogrn"`
}

type RegistryList struct {
	Count    int                `json:"count" validate:"min=0"`
	Next     *string            `json:"next"`
	Previous *string            `json:"previous"`
	Results  []RegistryListItem `json:"results" validate:"dive"`
	DateInfo any                `json:"date_info"`
}

type RegistryOrganization struct {
	FullName       string      `json:"full_name" validate:"required"`
	ShortName      *string     `json:"short_name"`
	INN            string      `json:"inn" validate:"required,numeric,len=10"`
	KPP            string      `json:"kpp" validate:"omitempty,numeric,len=9"`
	OGRN           string      `json:"ogrn" validate:"omitempty,numeric,len=13"`
	FactualAddress string      `json:"factual_address"`
	RegionCode     *RegionCode `json:"region_code"`
}

// RegionCode accepts both 21 and "21", the registry has used either.
type RegionCode int64

func (c *RegionCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("region_code %s: %w", b, err)
	}
	*c = RegionCode(n)
	return nil
}
