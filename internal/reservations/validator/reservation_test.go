package validator

import (
	"strings"
	"testing"
	"time"

	"innbook/pkg/model"
)

func validReservation() *model.Reservation {
	return &model.Reservation{
		GuestID:   5,
		RoomID:    7,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:    model.StatusPending,
	}
}

func TestValidate_ValidReservation(t *testing.T) {
	v := NewReservationValidator()
	if err := v.Validate(validReservation()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	v := NewReservationValidator()

	res := validReservation()
	res.GuestID = 0
	res.StartDate = time.Time{}

	err := v.Validate(res)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "GuestID") {
		t.Errorf("expected GuestID in error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "StartDate") {
		t.Errorf("expected StartDate in error, got: %v", err)
	}
}

func TestValidate_NegativeIDs(t *testing.T) {
	v := NewReservationValidator()

	res := validReservation()
	res.RoomID = -3

	if err := v.Validate(res); err == nil {
		t.Fatal("expected validation error for negative room id")
	}
}

func TestValidate_InvalidStatus(t *testing.T) {
	v := NewReservationValidator()

	res := validReservation()
	res.Status = "checked_in"

	err := v.Validate(res)
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
	if !strings.Contains(err.Error(), "Status") {
		t.Errorf("expected Status in error, got: %v", err)
	}
}

func TestValidate_InvalidObjectID(t *testing.T) {
	v := NewReservationValidator()

	res := validReservation()
	res.ID = "not-an-object-id"

	if err := v.Validate(res); err == nil {
		t.Fatal("expected validation error for malformed id")
	}
}

func TestValidateUpdate_EmptyUpdateIsValid(t *testing.T) {
	v := NewReservationValidator()
	if err := v.ValidateUpdate(&model.ReservationUpdate{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUpdate_NegativeGuestID(t *testing.T) {
	v := NewReservationValidator()

	bad := int64(-1)
	if err := v.ValidateUpdate(&model.ReservationUpdate{GuestID: &bad}); err == nil {
		t.Fatal("expected validation error for negative guest id")
	}
}
