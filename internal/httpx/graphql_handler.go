package httpx

import (
	"github.com/go-chi/chi/v5"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

type GraphQLHandler struct {
	Schema *graphql.Schema
}

func (h *GraphQLHandler) Register(r chi.Router) {
	r.Method("POST", "/graphql", &relay.Handler{Schema: h.Schema})
}
