package model

// PropertyRecord is one listing page normalized into a stable shape.
// Sub-fields missing from the page payload stay nil.
type PropertyRecord struct {
	ID              string          `json:"id"`
	Status          PropertyStatus  `json:"status"`
	Text            PropertyText    `json:"text"`
	Prices          PropertyPrices  `json:"prices"`
	Address         PropertyAddress `json:"address"`
	Bedrooms        *int            `json:"bedrooms"`
	Bathrooms       *int            `json:"bathrooms"`
	PropertySubType *string         `json:"propertySubType"`
	Images          []string        `json:"images"`
	Agent           PropertyAgent   `json:"agent"`
	URL             string          `json:"url"`
}

// PropertyStatus holds listing visibility flags.
type PropertyStatus struct {
	Published bool `json:"published"`
	Archived  bool `json:"archived"`
}

// PropertyText holds the descriptive copy of a listing.
type PropertyText struct {
	Description      *string `json:"description"`
	PropertyPhrase   *string `json:"propertyPhrase"`
	Disclaimer       *string `json:"disclaimer"`
	ShortDescription *string `json:"shortDescription"`
	PageTitle        *string `json:"pageTitle"`
}

// PropertyPrices holds display prices as shown on the page, e.g. "£2,362 pcm".
type PropertyPrices struct {
	PrimaryPrice          *string `json:"primaryPrice"`
	SecondaryPrice        *string `json:"secondaryPrice"`
	DisplayPriceQualifier *string `json:"displayPriceQualifier"`
}

// PropertyAddress holds the postal address split the way the site does.
type PropertyAddress struct {
	DisplayAddress *string `json:"displayAddress"`
	Outcode        *string `json:"outcode"`
	Incode         *string `json:"incode"`
	CountryCode    *string `json:"countryCode"`
	UKCountry      *string `json:"ukCountry"`
}

// PropertyAgent identifies the marketing branch.
type PropertyAgent struct {
	Name      *string `json:"name"`
	BranchID  *int64  `json:"branchId"`
	Telephone *string `json:"telephone"`
}

// Valuation is the compact pricing view returned for scraped listings.
type Valuation struct {
	Bedrooms       *int     `json:"bedrooms"`
	DisplayAddress *string  `json:"displayAddress"`
	Rent           *float64 `json:"rent"`
	ExpectedRent   *float64 `json:"expectedRent"`
	URL            string   `json:"url"`
}
