package mocks

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate
//counterfeiter:generate -o=db.store.mock.go ../db Store
//counterfeiter:generate -o=engine.adapter.mock.go ../engine Adapter
//counterfeiter:generate -o=tableid.mock.go ../sql TableIdentifier
