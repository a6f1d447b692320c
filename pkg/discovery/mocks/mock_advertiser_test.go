package mocks

import "github.com/wareck/gerbera/pkg/discovery"

var _ discovery.Advertiser = (*MockAdvertiser)(nil)
