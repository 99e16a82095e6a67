package vehicle

import "strings"

// Type is the closed vehicle category enumeration.
type Type string

const (
	TypeCar        Type = "car"
	TypeMotorcycle Type = "motorcycle"
	TypeTruck      Type = "truck"
	TypeBike       Type = "bike"
)

// TypeInfo carries display metadata for a Type.
type TypeInfo struct {
	Value Type   `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var typeInfos = []TypeInfo{
	{Value: TypeCar, Label: "Car", Icon: "car"},
	{Value: TypeMotorcycle, Label: "Motorcycle", Icon: "motorbike"},
	{Value: TypeTruck, Label: "Truck", Icon: "truck"},
	{Value: TypeBike, Label: "Bike", Icon: "bike"},
}

// Types returns the vehicle categories in display order.
func Types() []TypeInfo {
	return append([]TypeInfo{}, typeInfos...)
}

// Valid reports whether t is one of the known categories.
func (t Type) Valid() bool {
	for _, info := range typeInfos {
		if info.Value == t {
			return true
		}
	}
	return false
}

// Info returns the metadata for t. Unknown types fall back to the car icon.
func (t Type) Info() TypeInfo {
	for _, info := range typeInfos {
		if info.Value == t {
			return info
		}
	}
	return TypeInfo{Value: t, Label: string(t), Icon: "car"}
}

// ParseType matches raw against category values and labels, ignoring case.
func ParseType(raw string) (Type, bool) {
	raw = strings.TrimSpace(raw)
	for _, info := range typeInfos {
		if strings.EqualFold(raw, string(info.Value)) || strings.EqualFold(raw, info.Label) {
			return info.Value, true
		}
	}
	return Type(raw), false
}

// TransmissionTypes lists the suggested transmission values.
var TransmissionTypes = []string{
	"Manual",
	"Automatic",
	"CVT",
	"Semi-Automatic",
	"Dual-Clutch",
}

// Make is a top-level catalog choice.
type Make struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Model is a dependent catalog choice. MakeID references a Make.
type Model struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	MakeID string `json:"makeId" yaml:"makeId"`
}
