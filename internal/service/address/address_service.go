// Package address renders geography fragments into storable address strings.
package address

import (
	"context"
	"strconv"
	"strings"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/domain/dto"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/ougirez/certzone/internal/pkg/logger"
)

// Separator joins the fragments of a multi-address resource; it never occurs inside one fragment.
const Separator = "; "

// федеральные города уже названы в наименовании региона
var federalCities = []string{"москва", "санкт-петербург", "севастополь"}

type RegionSet interface {
	HasRegion(code int64) bool
}

type Formatter struct {
	regions RegionSet
}

func NewFormatter(regions RegionSet) *Formatter {
	return &Formatter{regions: regions}
}

// Format renders "<address>, <city>, <region><, index>". Unknown region codes become 99.
func (f *Formatter) Format(ctx context.Context, a dto.Address) domain.FormattedAddress {
	code, err := strconv.ParseInt(strings.TrimSpace(a.RegionCode), 10, 64)
	if err != nil || !f.regions.HasRegion(code) {
		logger.Warnf(ctx, "region code %q is not in the reference table, using %d", a.RegionCode, constants.OtherTerritoriesRegionCode)
		code = constants.OtherTerritoriesRegionCode
	}

	var b strings.Builder
	b.WriteString(a.Address)
	b.WriteString(", ")
	if city := cityPart(a.CityName); city != "" {
		b.WriteString(city)
		b.WriteString(", ")
	}
	b.WriteString(a.RegionName)
	if a.Index != "" {
		b.WriteString(", ")
		b.WriteString(a.Index)
	}

	formatted := strings.ReplaceAll(b.String(), ";", ",")
	logger.Debugf(ctx, "address %q formatted, region %d", formatted, code)

	return domain.FormattedAddress{RegionCode: code, Address: formatted}
}

// FormatAll formats every fragment and joins them with Separator.
// Region codes come back de-duplicated in document order.
func (f *Formatter) FormatAll(ctx context.Context, addrs []dto.Address) (string, []int64) {
	parts := make([]string, 0, len(addrs))
	codes := make([]int64, 0, len(addrs))
	seen := make(map[int64]struct{}, len(addrs))

	for _, a := range addrs {
		formatted := f.Format(ctx, a)
		parts = append(parts, formatted.Address)
		if _, ok := seen[formatted.RegionCode]; ok {
			continue
		}
		seen[formatted.RegionCode] = struct{}{}
		codes = append(codes, formatted.RegionCode)
	}

	return strings.Join(parts, Separator), codes
}

func cityPart(city string) string {
	lower := strings.ToLower(city)
	for _, fc := range federalCities {
		if strings.Contains(lower, fc) {
			return ""
		}
	}
	return city
}
