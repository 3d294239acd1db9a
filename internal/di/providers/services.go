package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/i18n"
	"github.com/listenupapp/bookshelf-server/internal/logger"
	"github.com/listenupapp/bookshelf-server/internal/service"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// ProvideMessages provides the response message catalog.
func ProvideMessages(i do.Injector) (*i18n.Messages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return i18n.New(cfg.Messages.Language)
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	st := do.MustInvoke[*store.Store](i)
	validator := do.MustInvoke[*validation.Validator](i)
	messages := do.MustInvoke[*i18n.Messages](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(st, validator, messages, log.Logger), nil
}
