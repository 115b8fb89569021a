package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ziotom78/instrumentdb/pkg/domain"
)

func TestValidateName(t *testing.T) {
	good := []string{
		"telescope",
		"horn01",
		"beam.v2+cal~x",
		"27GHz@boresight",
		strings.Repeat("x", 256),
	}
	for _, name := range good {
		if err := domain.ValidateName(name); err != nil {
			t.Errorf("name %q rejected: %s", name, err)
		}
	}

	bad := []string{
		"",
		"with spaces",
		"slash/inside",
		strings.Repeat("x", 257),
	}
	for _, name := range bad {
		err := domain.ValidateName(name)
		if err == nil {
			t.Errorf("name %q accepted", name)
		} else if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("name %q: error does not wrap ErrValidation", name)
		}
	}
}

func TestValidateTag(t *testing.T) {
	good := []string{"v1.0", "planck2018", "rc_2", strings.Repeat("v", 32)}
	for _, tag := range good {
		if err := domain.ValidateTag(tag); err != nil {
			t.Errorf("tag %q rejected: %s", tag, err)
		}
	}

	bad := []string{"", "bad tag!", "with/slash", strings.Repeat("v", 33)}
	for _, tag := range bad {
		err := domain.ValidateTag(tag)
		if err == nil {
			t.Errorf("tag %q accepted", tag)
		} else if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("tag %q: error does not wrap ErrValidation", tag)
		}
	}
}

func TestValidateMetadata(t *testing.T) {
	t.Run("empty metadata is fine", func(t *testing.T) {
		if err := domain.ValidateMetadata(""); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
	})

	t.Run("well-formed JSON within the bound is fine", func(t *testing.T) {
		if err := domain.ValidateMetadata(`{"fwhm_deg": 1.0}`); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
	})

	t.Run("broken JSON is rejected", func(t *testing.T) {
		err := domain.ValidateMetadata(`{"fwhm_deg": }`)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})

	t.Run("oversized metadata is rejected", func(t *testing.T) {
		blob := `{"pad": "` + strings.Repeat("x", domain.MaxMetadataLen) + `"}`
		err := domain.ValidateMetadata(blob)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})
}
