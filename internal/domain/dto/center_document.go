package dto

import "time"

// OrgIdentity is the identity block of an organization as written in the document.
type OrgIdentity struct {
	INN      string
	KPP      string
	OGRN     string
	FullName string
}

// Address is one geography fragment (<СвЦентрАдр>, <АдрРазмОбкт>).
type Address struct {
	RegionCode string
	RegionName string
	Address    string
	Index      string
	CityName   string
}

type Contact struct {
	FIO       string
	Dep       string
	Pos       string
	MobPhone  string
	WorkPhone string
	Email     string
}

type KII struct {
	FSTECRegNumber string
	Category       string
}

// IsOKII: наличие рег. номера или категории означает объект КИИ.
func (k KII) IsOKII() bool {
	return k.FSTECRegNumber != "" || k.Category != ""
}

// Document is the responsibility document of a resource (<СвДокумент>).
type Document struct {
	Type      string
	Props     string
	DateStart time.Time
	DateEnd   time.Time
	Comment   string
}

func (d Document) EndsBeforeStart() bool {
	return d.DateEnd.Before(d.DateStart)
}

type Resource struct {
	Name      string
	Addresses []Address
	KII       KII
	Document  Document
	Services  []string
}

type Zone struct {
	Org       OrgIdentity
	Contacts  []Contact
	Resources []Resource
}

// CenterDocument is the structurally parsed input file.
type CenterDocument struct {
	DateForm      time.Time
	CenterName    string
	CenterClass   string
	Owner         OrgIdentity
	CenterAddress Address
	Contacts      []Contact
	Zones         []Zone
}
