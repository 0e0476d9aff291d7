package state

import (
	"github.com/vodhouse/vodhouse/config"
	"github.com/vodhouse/vodhouse/server/auth"
	"github.com/vodhouse/vodhouse/storage/catalog"
	"github.com/vodhouse/vodhouse/storage/media"
)

type State struct {
	Cfg     *config.Config
	Catalog catalog.Store
	Media   media.Store
	Authn   auth.Authenticator
	Authz   auth.Authorizer
}
