package listing

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/listing-assistant/internal/model"
)

// ParseProperty maps the page model's propertyData block into a
// PropertyRecord. Missing sub-fields stay nil.
func ParseProperty(payload json.RawMessage) (*model.PropertyRecord, error) {
	data := gjson.GetBytes(payload, "propertyData")
	if !data.IsObject() {
		return nil, eris.Wrap(ErrNoPayload, "listing: propertyData missing")
	}
	id := data.Get("id").String()
	if id == "" {
		return nil, eris.Wrap(ErrNoPayload, "listing: propertyData has no id")
	}

	rec := &model.PropertyRecord{
		ID: id,
		Status: model.PropertyStatus{
			Published: boolOr(data.Get("published"), true),
			Archived:  boolOr(data.Get("archived"), false),
		},
		Text: model.PropertyText{
			Description:      str(data.Get("text.description")),
			PropertyPhrase:   str(data.Get("text.propertyPhrase")),
			Disclaimer:       str(data.Get("text.disclaimer")),
			ShortDescription: str(data.Get("text.shortDescription")),
			PageTitle:        str(data.Get("text.pageTitle")),
		},
		Prices: model.PropertyPrices{
			PrimaryPrice:          str(data.Get("prices.primaryPrice")),
			SecondaryPrice:        str(data.Get("prices.secondaryPrice")),
			DisplayPriceQualifier: str(data.Get("prices.displayPriceQualifier")),
		},
		Address: model.PropertyAddress{
			DisplayAddress: str(data.Get("address.displayAddress")),
			Outcode:        str(data.Get("address.outcode")),
			Incode:         str(data.Get("address.incode")),
			CountryCode:    str(data.Get("address.countryCode")),
			UKCountry:      str(data.Get("address.ukCountry")),
		},
		Bedrooms:        integer(data.Get("bedrooms")),
		Bathrooms:       integer(data.Get("bathrooms")),
		PropertySubType: str(data.Get("propertySubType")),
		Agent: model.PropertyAgent{
			Name:      str(data.Get("customer.branchDisplayName")),
			Telephone: str(data.Get("customer.telephone")),
		},
		URL: CanonicalURL(id),
	}
	if b := data.Get("customer.branchId"); b.Exists() && b.Type != gjson.Null {
		v := b.Int()
		rec.Agent.BranchID = &v
	}
	for _, img := range data.Get("images.#.srcUrl").Array() {
		if img.String() != "" {
			rec.Images = append(rec.Images, img.String())
		}
	}
	return rec, nil
}

func str(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	return &s
}

func integer(r gjson.Result) *int {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	v := int(r.Int())
	return &v
}

func boolOr(r gjson.Result, def bool) bool {
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.Bool()
}
