package store

import "github.com/goliatone/go-trackjournal/pkg/vehicle"

func validData() vehicle.Data {
	return vehicle.Data{Make: "Toyota", Model: "Camry", Year: 2020, Type: vehicle.TypeCar}
}

func validPatch() vehicle.Patch {
	return vehicle.FullPatch(validData())
}
