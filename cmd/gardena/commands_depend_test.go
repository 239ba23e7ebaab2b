//go:build test

// Code generated by dependgen — DO NOT EDIT.
package main

import "github.com/srgg/testify/depend"

var CommandsTestSuiteTestRegistry = map[string]func(any){
	"TestReadSingle": func(s any) { s.(*CommandsTestSuite).TestReadSingle() },
	"TestReadMultiple": func(s any) { s.(*CommandsTestSuite).TestReadMultiple() },
	"TestReadJSON": func(s any) { s.(*CommandsTestSuite).TestReadJSON() },
	"TestReadHex": func(s any) { s.(*CommandsTestSuite).TestReadHex() },
	"TestReadContinuesAfterError": func(s any) { s.(*CommandsTestSuite).TestReadContinuesAfterError() },
	"TestReadMissingSingleFails": func(s any) { s.(*CommandsTestSuite).TestReadMissingSingleFails() },
	"TestReadUnknownNameFails": func(s any) { s.(*CommandsTestSuite).TestReadUnknownNameFails() },
	"TestReadAmbiguousNameFails": func(s any) { s.(*CommandsTestSuite).TestReadAmbiguousNameFails() },
	"TestWrite": func(s any) { s.(*CommandsTestSuite).TestWrite() },
	"TestWriteWithoutResponse": func(s any) { s.(*CommandsTestSuite).TestWriteWithoutResponse() },
	"TestWriteInvalidValueFails": func(s any) { s.(*CommandsTestSuite).TestWriteInvalidValueFails() },
	"TestWriteReadOnlyFails": func(s any) { s.(*CommandsTestSuite).TestWriteReadOnlyFails() },
	"TestSyncClock": func(s any) { s.(*CommandsTestSuite).TestSyncClock() },
	"TestSyncClockWithinTolerance": func(s any) { s.(*CommandsTestSuite).TestSyncClockWithinTolerance() },
	"TestSyncClockToleranceIsPerRun": func(s any) { s.(*CommandsTestSuite).TestSyncClockToleranceIsPerRun() },
	"TestInspect": func(s any) { s.(*CommandsTestSuite).TestInspect() },
	"TestInspectJSON": func(s any) { s.(*CommandsTestSuite).TestInspectJSON() },
	"TestChars": func(s any) { s.(*CommandsTestSuite).TestChars() },
	"TestScanJSON": func(s any) { s.(*CommandsTestSuite).TestScanJSON() },
	"TestScanNoDevices": func(s any) { s.(*CommandsTestSuite).TestScanNoDevices() },
	"TestScanInvalidServiceFails": func(s any) { s.(*CommandsTestSuite).TestScanInvalidServiceFails() },
}

var CommandsTestSuiteTestOrder = []string{
	"TestReadSingle",
	"TestReadMultiple",
	"TestReadJSON",
	"TestReadHex",
	"TestReadContinuesAfterError",
	"TestReadMissingSingleFails",
	"TestReadUnknownNameFails",
	"TestReadAmbiguousNameFails",
	"TestWrite",
	"TestWriteWithoutResponse",
	"TestWriteInvalidValueFails",
	"TestWriteReadOnlyFails",
	"TestSyncClock",
	"TestSyncClockWithinTolerance",
	"TestSyncClockToleranceIsPerRun",
	"TestInspect",
	"TestInspectJSON",
	"TestChars",
	"TestScanJSON",
	"TestScanNoDevices",
	"TestScanInvalidServiceFails",
}

var CommandsTestSuiteDependencies = depend.Depends(func(s any) *depend.Dep {
	dep := new(depend.Dep)
	dep.On("TestReadJSON", "TestReadSingle")
	dep.On("TestSyncClockWithinTolerance", "TestSyncClock")
	dep.On("TestSyncClockToleranceIsPerRun", "TestSyncClockWithinTolerance")
	return dep
})

// GeneratedDependConfig returns the dependency configuration for CommandsTestSuite.
// This method allows CommandsTestSuite to be used with depend.RunSuite(t, suite).
// DO NOT implement this method manually - it is auto-generated.
func (s *CommandsTestSuite) GeneratedDependConfig() *depend.SuiteConfig {
	return &depend.SuiteConfig{
		Registry: CommandsTestSuiteTestRegistry,
		Order:    CommandsTestSuiteTestOrder,
		Deps:     CommandsTestSuiteDependencies,
	}
}
