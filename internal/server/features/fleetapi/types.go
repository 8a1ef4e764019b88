package fleetapi

import "errors"

var errNotFound = errors.New("not found")
