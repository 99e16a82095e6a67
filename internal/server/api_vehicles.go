package server

import (
	"context"
	"math"
	"net/http"

	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/validation"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

type vehicleList struct {
	Data []vehicle.Vehicle `json:"data"`
}

// patchRequest mirrors vehicle.Patch with the year kept as a JSON number.
type patchRequest struct {
	Make         *string  `json:"make"`
	Model        *string  `json:"model"`
	Year         *float64 `json:"year"`
	Type         *string  `json:"type"`
	Engine       *string  `json:"engine"`
	Transmission *string  `json:"transmission"`
	Color        *string  `json:"color"`
	VIN          *string  `json:"vin"`
	LicensePlate *string  `json:"licensePlate"`
	Notes        *string  `json:"notes"`
}

func (p patchRequest) applyTo(c *validation.Candidate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Make, p.Make)
	set(&c.Model, p.Model)
	set(&c.Type, p.Type)
	set(&c.Engine, p.Engine)
	set(&c.Transmission, p.Transmission)
	set(&c.Color, p.Color)
	set(&c.VIN, p.VIN)
	set(&c.LicensePlate, p.LicensePlate)
	set(&c.Notes, p.Notes)
	if p.Year != nil {
		c.Year = *p.Year
	}
}

func (p patchRequest) patch() vehicle.Patch {
	out := vehicle.Patch{
		Make:         p.Make,
		Model:        p.Model,
		Engine:       p.Engine,
		Transmission: p.Transmission,
		Color:        p.Color,
		VIN:          p.VIN,
		LicensePlate: p.LicensePlate,
		Notes:        p.Notes,
	}
	if p.Type != nil {
		t := vehicle.Type(*p.Type)
		out.Type = &t
	}
	if p.Year != nil {
		year := 0
		if !math.IsNaN(*p.Year) && !math.IsInf(*p.Year, 0) {
			year = int(*p.Year)
		}
		out.Year = &year
	}
	return validation.SanitizePatch(out)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	list, err := s.deps.Records.List(r.Context(), user.UID)
	if err != nil {
		s.logStoreFailure("list", err)
		writeFailure(w, store.Normalize(err, store.FallbackList))
		return
	}
	writeJSON(w, http.StatusOK, vehicleList{Data: list})
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	var candidate validation.Candidate
	if err := decodeJSON(r, &candidate); err != nil {
		writeFailure(w, err)
		return
	}
	candidate = validation.SanitizeCandidate(candidate)
	if errs := validation.Vehicle(candidate, s.deps.Now()); !errs.Empty() {
		writeValidation(w, errs)
		return
	}
	created, err := s.deps.Records.Create(r.Context(), user.UID, candidate.Data())
	if err != nil {
		s.logStoreFailure("create", err)
		writeFailure(w, store.Normalize(err, store.FallbackCreate))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	record, err := s.ownedVehicle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, store.Normalize(err, store.FallbackGet))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req patchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	current, err := s.ownedVehicle(r.Context(), id)
	if err != nil {
		writeFailure(w, store.Normalize(err, store.FallbackUpdate))
		return
	}

	patch := req.patch()
	candidate := validation.CandidateFromData(current.Data())
	req.applyTo(&candidate)
	candidate = validation.SanitizeCandidate(candidate)
	if errs := validation.Vehicle(candidate, s.deps.Now()); !errs.Empty() {
		writeValidation(w, errs)
		return
	}

	updated, err := s.deps.Records.Update(r.Context(), id, patch)
	if err != nil {
		s.logStoreFailure("update", err)
		writeFailure(w, store.Normalize(err, store.FallbackUpdate))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.ownedVehicle(r.Context(), id); err != nil {
		writeFailure(w, store.Normalize(err, store.FallbackDelete))
		return
	}
	if err := s.deps.Records.Delete(r.Context(), id); err != nil {
		s.logStoreFailure("delete", err)
		writeFailure(w, store.Normalize(err, store.FallbackDelete))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedVehicle loads id and hides records that belong to someone else.
func (s *Server) ownedVehicle(ctx context.Context, id string) (vehicle.Vehicle, error) {
	user, _ := UserFrom(ctx)
	record, err := s.deps.Records.Get(ctx, id)
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	if record.OwnerID != user.UID {
		return vehicle.Vehicle{}, store.NotFound()
	}
	return record, nil
}
