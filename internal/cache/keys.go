package cache

import "fmt"

type KeyGenerator struct {
	Prefix string
}

// NewKeyGenerator creates a new key generator with the given prefix
func NewKeyGenerator(prefix string) *KeyGenerator {
	if prefix == "" {
		prefix = "ovs"
	}
	return &KeyGenerator{Prefix: prefix}
}

// SampleKey addresses the latest host sample for a mount point
func (kg *KeyGenerator) SampleKey(diskPath string) string {
	return fmt.Sprintf("%s:sample:%s", kg.Prefix, diskPath)
}

// GPUKey addresses the latest GPU reading
func (kg *KeyGenerator) GPUKey() string {
	return fmt.Sprintf("%s:gpu", kg.Prefix)
}
