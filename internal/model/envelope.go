package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Kind is the wire discriminator of an Envelope.
type Kind string

const (
	KindMessage     Kind = "message"
	KindData        Kind = "data"
	KindPlot        Kind = "plot"
	KindHTML        Kind = "html"
	KindPricingData Kind = "pricing_data"
	KindError       Kind = "error"
)

// Envelope is the single response contract returned to the front end.
// The set of implementations is closed: Message, Data, Plot, HTML,
// PricingData and Failure.
type Envelope interface {
	Kind() Kind
	sealed()
}

// Message is an informational or terminal notice.
type Message struct {
	Message string `json:"message"`
}

// Data is a tabular result rendered as-is.
type Data struct {
	Data []Record `json:"data"`
}

// Plot carries the rendered figure as JSON (mark, labels and data-bound
// traces) and the rows it is drawn from.
type Plot struct {
	Result string   `json:"result"`
	Data   []Record `json:"data"`
}

// HTML is a standalone renderable document.
type HTML struct {
	Content string `json:"content"`
}

// PricingData carries valuations for scraped listings. Front ends keep it
// out of conversational history.
type PricingData struct {
	Data []Valuation `json:"data"`
}

// Failure is a user-visible error with an optional remediation hint. Data is
// set when rows were retrieved but could not be charted.
type Failure struct {
	Error    string   `json:"error"`
	Solution string   `json:"solution,omitempty"`
	Data     []Record `json:"data,omitempty"`
}

func (Message) Kind() Kind     { return KindMessage }
func (Data) Kind() Kind        { return KindData }
func (Plot) Kind() Kind        { return KindPlot }
func (HTML) Kind() Kind        { return KindHTML }
func (PricingData) Kind() Kind { return KindPricingData }
func (Failure) Kind() Kind     { return KindError }

func (Message) sealed()     {}
func (Data) sealed()        {}
func (Plot) sealed()        {}
func (HTML) sealed()        {}
func (PricingData) sealed() {}
func (Failure) sealed()     {}

// MarshalJSON adds the type discriminator.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias Message
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindMessage, alias(m)})
}

// MarshalJSON adds the type discriminator and never emits a null data list.
func (d Data) MarshalJSON() ([]byte, error) {
	type alias Data
	if d.Data == nil {
		d.Data = []Record{}
	}
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindData, alias(d)})
}

// MarshalJSON adds the type discriminator.
func (p Plot) MarshalJSON() ([]byte, error) {
	type alias Plot
	if p.Data == nil {
		p.Data = []Record{}
	}
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindPlot, alias(p)})
}

// MarshalJSON adds the type discriminator.
func (h HTML) MarshalJSON() ([]byte, error) {
	type alias HTML
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindHTML, alias(h)})
}

// MarshalJSON adds the type discriminator.
func (p PricingData) MarshalJSON() ([]byte, error) {
	type alias PricingData
	if p.Data == nil {
		p.Data = []Valuation{}
	}
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindPricingData, alias(p)})
}

// MarshalJSON adds the type discriminator.
func (f Failure) MarshalJSON() ([]byte, error) {
	type alias Failure
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindError, alias(f)})
}

// DecodeEnvelope parses a tagged envelope back into its variant.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, eris.Wrap(err, "envelope: decode type")
	}

	var (
		env Envelope
		err error
	)
	switch head.Type {
	case KindMessage:
		var v Message
		env, err = decodeInto(data, &v)
	case KindData:
		var v Data
		env, err = decodeInto(data, &v)
	case KindPlot:
		var v Plot
		env, err = decodeInto(data, &v)
	case KindHTML:
		var v HTML
		env, err = decodeInto(data, &v)
	case KindPricingData:
		var v PricingData
		env, err = decodeInto(data, &v)
	case KindError:
		var v Failure
		env, err = decodeInto(data, &v)
	default:
		return nil, eris.Errorf("envelope: unknown type %q", head.Type)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "envelope: decode %s", head.Type)
	}
	return env, nil
}

func decodeInto[T Envelope](data []byte, v *T) (Envelope, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return *v, nil
}
