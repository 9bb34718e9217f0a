// Package mocks provides mock implementations for testing the console client stack.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our
// port interfaces. The mocks are generated using go:generate directives and provide
// a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockStore := mocks.NewMockStore(ctrl)
//	mockStore.EXPECT().Get(gomock.Any()).Return(pair, nil)
package mocks

// Generate mock for the credential Store interface from internal/credentials.
// This creates MockStore with methods for all Store interface methods:
// Get, Set, Clear
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=credential_store_mock.go github.com/bidhub/console-go/internal/credentials Store
