package delta

import (
	"errors"
	"testing"
)

func TestMax(t *testing.T) {
	if Max(3) != Demand(3) {
		t.Errorf("expected 3, got %d", Max(3))
	}
	if Max(-2) != None {
		t.Errorf("expected None for negative, got %d", Max(-2))
	}
}

func TestDemand_AddSaturates(t *testing.T) {
	if got := Max(2).add(Max(3)); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	if got := Max(2).add(Unlimited); !got.IsUnlimited() {
		t.Errorf("expected unlimited, got %s", got)
	}
	if got := (Unlimited - 1).add(Max(5)); !got.IsUnlimited() {
		t.Errorf("expected overflow to saturate, got %s", got)
	}
	if got := Max(2).add(Demand(-4)); got != 2 {
		t.Errorf("expected negative operand ignored, got %d", got)
	}
}

func TestDemand_Take(t *testing.T) {
	if got := Max(2).take(); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := Unlimited.take(); !got.IsUnlimited() {
		t.Errorf("expected unlimited to stay unlimited, got %s", got)
	}
	if got := None.take(); got != None {
		t.Errorf("expected None to stay None, got %d", got)
	}
}

func TestDemand_String(t *testing.T) {
	if s := Unlimited.String(); s != "unlimited" {
		t.Errorf("expected 'unlimited', got %q", s)
	}
	if s := Max(7).String(); s != "7" {
		t.Errorf("expected '7', got %q", s)
	}
}

func TestCompletion(t *testing.T) {
	if !Finished.IsFinished() {
		t.Error("expected Finished to be finished")
	}
	if s := Finished.String(); s != "finished" {
		t.Errorf("expected 'finished', got %q", s)
	}

	c := Failure(errors.New("boom"))
	if c.IsFinished() {
		t.Error("expected failure not finished")
	}
	if s := c.String(); s != "failure: boom" {
		t.Errorf("expected 'failure: boom', got %q", s)
	}
}
