package validation

import "sort"

// Field names used as keys in Errors. They match the JSON names of
// vehicle.Data.
const (
	FieldMake         = "make"
	FieldModel        = "model"
	FieldYear         = "year"
	FieldType         = "type"
	FieldEngine       = "engine"
	FieldTransmission = "transmission"
	FieldColor        = "color"
	FieldVIN          = "vin"
	FieldLicensePlate = "licensePlate"
	FieldNotes        = "notes"
)

// Errors maps a field name to its message. An absent key means the field is valid.
type Errors map[string]string

// Empty reports whether no field failed.
func (e Errors) Empty() bool { return len(e) == 0 }

// Has reports whether field carries a message.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field names in lexical order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for field := range e {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Clone returns a copy that can be mutated independently.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Error implements error so a failed validation can travel through error returns.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation: no errors"
	}
	fields := e.Fields()
	return "validation: " + e[fields[0]]
}
