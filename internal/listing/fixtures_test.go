package listing

import "fmt"

const camdenPropertyData = `{
	"id": 164903663,
	"published": true,
	"archived": false,
	"text": {
		"description": "A bright two bedroom flat.",
		"propertyPhrase": "2 bedroom flat to rent",
		"pageTitle": "2 bedroom flat to rent in Camden Road, London, NW1"
	},
	"prices": {"primaryPrice": "£2,362 pcm", "secondaryPrice": "£545 pw", "displayPriceQualifier": ""},
	"address": {"displayAddress": "Camden Road, London, NW1", "outcode": "NW1", "incode": "9LS", "countryCode": "GB", "ukCountry": "England"},
	"bedrooms": 2,
	"bathrooms": 1,
	"propertySubType": "Flat",
	"images": [{"srcUrl": "https://media.test/1.jpg"}, {"caption": "no url"}, {"srcUrl": "https://media.test/2.jpg"}],
	"customer": {"branchDisplayName": "Camden Lettings", "branchId": 55123, "telephone": "020 7000 0000"}
}`

// listingPage wraps propertyData the way a listing page embeds it.
func listingPage(propertyData string) string {
	return fmt.Sprintf(`<!doctype html><html><head>
<script>window.dataLayer = [{"event": "pageview"}];</script>
<script>
	window.PAGE_MODEL = {"propertyData": %s, "metadata": {"currency": "GBP"}};
	window.adInfo = {"slot": 1};
</script>
</head><body><h1>Listing</h1></body></html>`, propertyData)
}

func listingPageFor(id int, price string) string {
	return listingPage(fmt.Sprintf(`{"id": %d, "prices": {"primaryPrice": %q}, "address": {"displayAddress": "Flat %d, London"}, "bedrooms": 1}`, id, price, id))
}
