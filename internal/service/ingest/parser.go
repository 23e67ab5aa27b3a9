package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/domain/dto"
)

const dateLayout = "2006-01-02"

// ParseFile reads a validated center document into its structural form.
func ParseFile(path string) (*dto.CenterDocument, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, structural("read %s: %v", path, err)
	}
	return Parse(doc)
}

func Parse(doc *etree.Document) (*dto.CenterDocument, error) {
	root := doc.Root()
	if root == nil {
		return nil, structural("document has no root element")
	}

	var (
		p   parser
		out dto.CenterDocument
	)

	out.DateForm = p.date(root.Tag, p.attr(root, "ДатаФорм"))
	out.CenterName = p.attr(root, "НаимЦентр")
	out.CenterClass = p.attr(root, "КлассЦентр")
	out.Owner = p.org(p.child(root, "СвЮЛ"))
	out.CenterAddress = p.address(p.child(root, "СвЦентрАдр"))
	out.Contacts = p.contacts(root, "СвЦентрКонт")

	if zones := root.SelectElement("СвЗонаОтв"); zones != nil {
		for _, z := range zones.SelectElements("ЕдЗО") {
			out.Zones = append(out.Zones, p.zone(z))
		}
	}

	if p.err != nil {
		return nil, p.err
	}
	return &out, nil
}

// parser keeps the first structural error, later reads become no-ops.
type parser struct {
	err error
}

func (p *parser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = structural(format, args...)
	}
}

func (p *parser) child(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	c := el.SelectElement(tag)
	if c == nil {
		p.fail("<%s> has no <%s>", el.Tag, tag)
	}
	return c
}

func (p *parser) attr(el *etree.Element, name string) string {
	if el == nil {
		return ""
	}
	a := el.SelectAttr(name)
	if a == nil {
		p.fail("<%s> has no attribute %s", el.Tag, name)
		return ""
	}
	return strings.TrimSpace(a.Value)
}

func (p *parser) text(el *etree.Element, tag string) string {
	c := p.child(el, tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

func optionalText(el *etree.Element, tag string) string {
	if el == nil {
		return ""
	}
	if c := el.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

func (p *parser) date(what, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		p.fail("<%s>: bad date %q", what, value)
	}
	return t
}

func (p *parser) org(el *etree.Element) dto.OrgIdentity {
	return dto.OrgIdentity{
		INN:      p.attr(el, "ИНН"),
		KPP:      p.attr(el, "КПП"),
		OGRN:     p.attr(el, "ОГРН"),
		FullName: p.attr(el, "НаимЮЛПолн"),
	}
}

func (p *parser) address(el *etree.Element) dto.Address {
	return dto.Address{
		RegionCode: p.text(el, "КодРегион"),
		RegionName: p.text(el, "НаимРегион"),
		Address:    p.text(el, "Адрес"),
		Index:      optionalText(el, "Индекс"),
		CityName:   optionalText(el, "НаимГор"),
	}
}

func (p *parser) contacts(parent *etree.Element, tag string) []dto.Contact {
	var out []dto.Contact
	for _, el := range parent.SelectElements(tag) {
		out = append(out, dto.Contact{
			FIO:       p.text(el, "ФИО"),
			Dep:       optionalText(el, "Подразд"),
			Pos:       optionalText(el, "Должн"),
			MobPhone:  optionalText(el, "МобТел"),
			WorkPhone: p.text(el, "РабТел"),
			Email:     optionalText(el, "ЭлПоч"),
		})
	}
	return out
}

func (p *parser) zone(el *etree.Element) dto.Zone {
	z := dto.Zone{
		Org:      p.org(p.child(el, "СвЗОЮЛ")),
		Contacts: p.contacts(el, "СвЗОКонтЮЛ"),
	}
	if objects := p.child(el, "СвЗООбктЮЛ"); objects != nil {
		for _, res := range objects.SelectElements("СвОбкт") {
			z.Resources = append(z.Resources, p.resource(res))
		}
	}
	return z
}

func (p *parser) resource(el *etree.Element) dto.Resource {
	r := dto.Resource{Name: p.attr(el, "Наим")}

	for _, a := range children(el, "СвАдрРазм", "АдрРазмОбкт") {
		r.Addresses = append(r.Addresses, p.address(a))
	}

	if kii := el.SelectElement("СвКИИ"); kii != nil {
		r.KII = dto.KII{
			FSTECRegNumber: optionalText(kii, "РегНом"),
			Category:       optionalText(kii, "КатЗнач"),
		}
	}

	if doc := p.child(el, "СвДокумент"); doc != nil {
		r.Document = dto.Document{
			Type:      p.text(doc, "Наим"),
			Props:     p.text(doc, "Рекв"),
			DateStart: p.date("ДатаСтарт", p.text(doc, "ДатаСтарт")),
			DateEnd:   p.date("ДатаФиниш", p.text(doc, "ДатаФиниш")),
			Comment:   optionalText(doc, "Ком"),
		}
	}

	for _, f := range children(el, "СвФункции", "Функция") {
		if name := strings.TrimSpace(f.Text()); name != "" {
			r.Services = append(r.Services, name)
		}
	}

	return r
}

// children returns the <tag> elements of the optional <group> child of el.
func children(el *etree.Element, group, tag string) []*etree.Element {
	g := el.SelectElement(group)
	if g == nil {
		return nil
	}
	return g.SelectElements(tag)
}

func structural(format string, args ...any) error {
	return domain.NewIngestError(domain.FailureStructural, fmt.Sprintf(format, args...), nil)
}
