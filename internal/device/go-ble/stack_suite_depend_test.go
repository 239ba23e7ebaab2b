//go:build test

// Code generated by dependgen — DO NOT EDIT.
package goble_test

import "github.com/srgg/testify/depend"

var StackTestSuiteTestRegistry = map[string]func(any){
	"TestConnect": func(s any) { s.(*StackTestSuite).TestConnect() },
	"TestReadValue": func(s any) { s.(*StackTestSuite).TestReadValue() },
	"TestWriteValue": func(s any) { s.(*StackTestSuite).TestWriteValue() },
	"TestDisconnect": func(s any) { s.(*StackTestSuite).TestDisconnect() },
	"TestDisconnectForeignHandle": func(s any) { s.(*StackTestSuite).TestDisconnectForeignHandle() },
	"TestScannerSharesCentral": func(s any) { s.(*StackTestSuite).TestScannerSharesCentral() },
}

var StackTestSuiteTestOrder = []string{
	"TestConnect",
	"TestReadValue",
	"TestWriteValue",
	"TestDisconnect",
	"TestDisconnectForeignHandle",
	"TestScannerSharesCentral",
}

var StackTestSuiteDependencies = depend.Depends(func(s any) *depend.Dep {
	dep := new(depend.Dep)
	dep.On("TestReadValue", "TestConnect")
	dep.On("TestWriteValue", "TestConnect")
	dep.On("TestDisconnect", "TestConnect")
	return dep
})

// GeneratedDependConfig returns the dependency configuration for StackTestSuite.
// This method allows StackTestSuite to be used with depend.RunSuite(t, suite).
// DO NOT implement this method manually - it is auto-generated.
func (s *StackTestSuite) GeneratedDependConfig() *depend.SuiteConfig {
	return &depend.SuiteConfig{
		Registry: StackTestSuiteTestRegistry,
		Order:    StackTestSuiteTestOrder,
		Deps:     StackTestSuiteDependencies,
	}
}
