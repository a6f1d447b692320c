package mocks

import "github.com/wareck/gerbera/pkg/registry"

var _ registry.Service = (*MockService)(nil)
