package ingest

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/domain/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSchema    = "../../../testdata/cert_zone.xsd"
	twoZonesFile  = "../../../testdata/center_two_zones.xml"
	noZonesFile   = "../../../testdata/center_no_zones.xml"
	noDateFile    = "../../../testdata/center_missing_date.xml"
	malformedFile = "../../../testdata/center_malformed.xml"
)

func date(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseFile_TwoZones(t *testing.T) {
	doc, err := ParseFile(twoZonesFile)
	require.NoError(t, err)

	assert.Equal(t, date("2024-03-01"), doc.DateForm)
	assert.Equal(t, "Центр ГосСОПКА Чувашии", doc.CenterName)
	assert.Equal(t, "Б", doc.CenterClass)
	assert.Equal(t, dto.OrgIdentity{
		INN:      "2128000001",
		KPP:      "213001001",
		OGRN:     "1022100000001",
		FullName: "Бюджетное учреждение Центр информационных технологий",
	}, doc.Owner)
	assert.Equal(t, dto.Address{
		RegionCode: "21",
		RegionName: "Чувашская Республика",
		Address:    "пр. Ленина, д. 2",
		Index:      "428000",
		CityName:   "Чебоксары",
	}, doc.CenterAddress)

	require.Len(t, doc.Contacts, 2)
	assert.Equal(t, dto.Contact{
		FIO:       "Иванов Иван Иванович",
		Dep:       "Отдел мониторинга",
		Pos:       "Начальник отдела",
		WorkPhone: "+7 (8352) 00-00-01",
		Email:     "ivanov@cit.example.ru",
	}, doc.Contacts[0])
	assert.Equal(t, "+7 900 000-00-02", doc.Contacts[1].MobPhone)

	require.Len(t, doc.Zones, 2)
	assert.Equal(t, "7700000001", doc.Zones[0].Org.INN)
	require.Len(t, doc.Zones[0].Resources, 1)
	assert.False(t, doc.Zones[0].Resources[0].KII.IsOKII())

	zone := doc.Zones[1]
	require.Len(t, zone.Contacts, 1)
	require.Len(t, zone.Resources, 2)

	ais := zone.Resources[0]
	assert.Equal(t, "АИС Учет потребителей", ais.Name)
	require.Len(t, ais.Addresses, 2)
	assert.Equal(t, "г. Москва", ais.Addresses[1].CityName)
	assert.Equal(t, dto.KII{FSTECRegNumber: "ФСТЭК-21-0001", Category: "2"}, ais.KII)
	assert.Equal(t, dto.Document{
		Type:      "Соглашение",
		Props:     "№ 11 от 01.02.2024",
		DateStart: date("2024-02-01"),
		DateEnd:   date("2026-02-01"),
		Comment:   "Первичное подключение",
	}, ais.Document)
	assert.Equal(t, []string{"Мониторинг", "Реагирование", "Пентест по запросу"}, ais.Services)

	portal := zone.Resources[1]
	assert.True(t, portal.Document.EndsBeforeStart())
	assert.Empty(t, portal.Services)
}

func TestParseFile_NoZones(t *testing.T) {
	doc, err := ParseFile(noZonesFile)
	require.NoError(t, err)
	assert.Empty(t, doc.Zones)
	assert.Empty(t, doc.CenterAddress.CityName)
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		msg  string
	}{
		{name: "missing date", xml: `<Файл НаимЦентр="Ц" КлассЦентр="А"/>`, msg: "ДатаФорм"},
		{name: "bad date", xml: `<Файл ДатаФорм="01.03.2024" НаимЦентр="Ц" КлассЦентр="А"/>`, msg: "bad date"},
		{name: "no owner", xml: `<Файл ДатаФорм="2024-03-01" НаимЦентр="Ц" КлассЦентр="А"/>`, msg: "<СвЮЛ>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := etree.NewDocument()
			require.NoError(t, doc.ReadFromString(tt.xml))

			_, err := Parse(doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, domain.FailureStructural, domain.KindOf(err))
		})
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("does-not-exist.xml")
	assert.Equal(t, domain.FailureStructural, domain.KindOf(err))
}
