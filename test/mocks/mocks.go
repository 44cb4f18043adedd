// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// Regenerate with `go generate ./test/mocks`.
package mocks

//go:generate mockgen -source=../../internal/core/ports/inventory_repository.go -destination=inventory_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/inventory_service.go -destination=inventory_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/request_repository.go -destination=request_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/request_service.go -destination=request_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/notifier.go -destination=notifier_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/locker.go -destination=locker_mock.go -package=mocks
//go:generate mockgen -source=../../internal/workers/notifier.go -destination=task_enqueuer_mock.go -package=mocks
//go:generate mockgen -source=../../internal/workers/overdue_processor.go -destination=once_notifier_mock.go -package=mocks
