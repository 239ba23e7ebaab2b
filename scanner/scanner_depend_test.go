//go:build test

// Code generated by dependgen — DO NOT EDIT.
package scanner_test

import "github.com/srgg/testify/depend"

var ScannerTestSuiteTestRegistry = map[string]func(any){
	"TestFiltersGardenaDevices": func(s any) { s.(*ScannerTestSuite).TestFiltersGardenaDevices() },
	"TestMergesUpdates": func(s any) { s.(*ScannerTestSuite).TestMergesUpdates() },
	"TestIgnoresMalformedManufacturerData": func(s any) { s.(*ScannerTestSuite).TestIgnoresMalformedManufacturerData() },
	"TestIgnoresForeignManufacturerData": func(s any) { s.(*ScannerTestSuite).TestIgnoresForeignManufacturerData() },
	"TestAllowAndBlockLists": func(s any) { s.(*ScannerTestSuite).TestAllowAndBlockLists() },
	"TestCustomServiceFilter": func(s any) { s.(*ScannerTestSuite).TestCustomServiceFilter() },
}

var ScannerTestSuiteTestOrder = []string{
	"TestFiltersGardenaDevices",
	"TestMergesUpdates",
	"TestIgnoresMalformedManufacturerData",
	"TestIgnoresForeignManufacturerData",
	"TestAllowAndBlockLists",
	"TestCustomServiceFilter",
}

var ScannerTestSuiteDependencies = depend.Depends(func(s any) *depend.Dep {
	dep := new(depend.Dep)
	dep.On("TestMergesUpdates", "TestFiltersGardenaDevices")
	return dep
})

// GeneratedDependConfig returns the dependency configuration for ScannerTestSuite.
// This method allows ScannerTestSuite to be used with depend.RunSuite(t, suite).
// DO NOT implement this method manually - it is auto-generated.
func (s *ScannerTestSuite) GeneratedDependConfig() *depend.SuiteConfig {
	return &depend.SuiteConfig{
		Registry: ScannerTestSuiteTestRegistry,
		Order:    ScannerTestSuiteTestOrder,
		Deps:     ScannerTestSuiteDependencies,
	}
}
