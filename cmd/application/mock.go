package application

import (
	"context"

	"github.com/rs/zerolog"

	grao "github.com/db-afk/GRAO-tables-processing"
	"github.com/db-afk/GRAO-tables-processing/pkg/disambiguation"
	"github.com/db-afk/GRAO-tables-processing/pkg/sources"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    ResolverFunc: func() (disambiguation.Resolver, error) {
//	        return fakeResolver, nil
//	    },
//	}
//	cmd := resolve.NewCommand(mock)
type Mock struct {
	CatalogFunc      func(path string) (*sources.Catalog, error)
	ProcessorFunc    func(opts ...grao.Option) (grao.Processor, error)
	ResolverFunc     func() (disambiguation.Resolver, error)
	FlushFunc        func(ctx context.Context) error
	MatchedDirFunc   func() string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

var _ Application = (*Mock)(nil)

// Catalog returns a catalog using the mock function or nil.
func (m *Mock) Catalog(path string) (*sources.Catalog, error) {
	if m.CatalogFunc != nil {
		return m.CatalogFunc(path)
	}
	return nil, nil
}

// Processor returns a processor using the mock function or nil.
func (m *Mock) Processor(opts ...grao.Option) (grao.Processor, error) {
	if m.ProcessorFunc != nil {
		return m.ProcessorFunc(opts...)
	}
	return nil, nil
}

// Resolver returns a resolver using the mock function or nil.
func (m *Mock) Resolver() (disambiguation.Resolver, error) {
	if m.ResolverFunc != nil {
		return m.ResolverFunc()
	}
	return nil, nil
}

// Flush calls the mock function if set.
func (m *Mock) Flush(ctx context.Context) error {
	if m.FlushFunc != nil {
		return m.FlushFunc(ctx)
	}
	return nil
}

// MatchedDir returns the mock matched directory or an empty string.
func (m *Mock) MatchedDir() string {
	if m.MatchedDirFunc != nil {
		return m.MatchedDirFunc()
	}
	return ""
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the mock format or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns the mock version or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns the mock commit or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the mock date or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the mock builder or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}
