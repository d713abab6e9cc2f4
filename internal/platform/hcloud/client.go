package hcloud

import "github.com/imamik/gkectl/internal/provider"

var _ provider.ComputeAPI = (*RealClient)(nil)
