package discovery

import (
	"context"
	"errors"
)

// MultiAdvertiser sends announcements through several advertisers.
type MultiAdvertiser struct {
	advertisers []Advertiser
}

// NewMultiAdvertiser creates a fan-out advertiser. Nil entries are skipped.
func NewMultiAdvertiser(advertisers ...Advertiser) *MultiAdvertiser {
	m := &MultiAdvertiser{}
	for _, a := range advertisers {
		if a != nil {
			m.advertisers = append(m.advertisers, a)
		}
	}
	return m
}

// Alive calls Alive on every advertiser and joins the errors.
func (m *MultiAdvertiser) Alive(ctx context.Context, info *DeviceInfo) error {
	var errs []error
	for _, a := range m.advertisers {
		errs = append(errs, a.Alive(ctx, info))
	}
	return errors.Join(errs...)
}

// ByeBye calls ByeBye on every advertiser and joins the errors.
func (m *MultiAdvertiser) ByeBye(ctx context.Context, info *DeviceInfo) error {
	var errs []error
	for _, a := range m.advertisers {
		errs = append(errs, a.ByeBye(ctx, info))
	}
	return errors.Join(errs...)
}

// Close closes every advertiser and joins the errors.
func (m *MultiAdvertiser) Close() error {
	var errs []error
	for _, a := range m.advertisers {
		errs = append(errs, a.Close())
	}
	return errors.Join(errs...)
}

// Compile-time interface satisfaction check.
var _ Advertiser = (*MultiAdvertiser)(nil)
