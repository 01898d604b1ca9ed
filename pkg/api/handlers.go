package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/audit"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/auth"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/contextkeys"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/deletion"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/httputil"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/middleware"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/schema"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/storage"
)

const internalErrorMessage = "internal server error"

// deleteCollection runs the cascade for {slug}. The raw bearer token is
// handed to the orchestrator, which owns authentication for this route.
func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	slug, ok := httputil.ParsePathStringOrError(w, r, "slug")
	if !ok {
		return
	}

	// A missing or malformed header yields an empty token, which the
	// orchestrator rejects as unauthenticated.
	token, _ := middleware.BearerToken(r)

	result, err := s.deleter.DeleteCollection(r.Context(), deletion.Request{Token: token, Slug: slug})
	if err != nil {
		s.auditDeletionFailure(r, slug, err)
		s.writeDeletionError(w, r, slug, err)
		return
	}

	event := audit.NewEvent(r.Context(), audit.EventCollectionDeleted, audit.StatusSuccess, slug)
	if !result.Clean() {
		event.Status = audit.StatusWarning
	}
	event.Subject = result.DeletedBy
	event.Metadata["documents"] = result.DocumentsDeleted
	event.Metadata["assets_requested"] = result.AssetsRequested
	event.Metadata["assets_deleted"] = result.AssetsDeleted
	event.Metadata["warnings"] = len(result.Warnings)
	s.record(r, event)

	httputil.WriteSuccessMessage(w, "collection deleted", result)
}

func (s *Server) auditDeletionFailure(r *http.Request, slug string, err error) {
	event := audit.NewEvent(r.Context(), audit.EventCollectionDeleteFailed, audit.StatusFailure, slug)
	event.Message = deletion.KindOf(err).String()
	var derr *deletion.Error
	if errors.As(err, &derr) {
		event.Metadata["stage"] = string(derr.Stage)
	}
	s.record(r, event)
}

// record writes an audit event. Audit failures are logged, never surfaced.
func (s *Server) record(r *http.Request, event *audit.Event) {
	if err := s.audit.Log(r.Context(), event); err != nil {
		observability.FromContext(r.Context()).WithError(err).
			WithField("event_type", event.Type).Warn("failed to write audit event")
	}
}

func (s *Server) writeDeletionError(w http.ResponseWriter, r *http.Request, slug string, err error) {
	logger := observability.FromContext(r.Context()).WithFields(logrus.Fields{
		"slug":  slug,
		"error": err.Error(),
	})

	switch deletion.KindOf(err) {
	case deletion.KindUnauthenticated:
		logger.Debug("deletion rejected: unauthenticated")
		httputil.WriteUnauthorized(w, "unauthorized")
	case deletion.KindNotFound:
		httputil.WriteNotFoundError(w, "collection not found")
	case deletion.KindCanceled:
		logger.Warn("deletion canceled before documents were erased")
		httputil.WriteServiceUnavailable(w, "request canceled before deletion started")
	default:
		logger.Error("collection deletion failed")
		writeInternal(w, r)
	}
}

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.registry.ListCollections(r.Context())
	if err != nil {
		s.metrics.StorageError("list_collections")
		observability.FromContext(r.Context()).WithError(err).Error("failed to list collections")
		writeInternal(w, r)
		return
	}
	if collections == nil {
		collections = []*schema.CollectionConfig{}
	}
	httputil.WriteJSON(w, http.StatusOK, collectionList{Collections: collections})
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	slug, ok := httputil.ParsePathStringOrError(w, r, "slug")
	if !ok {
		return
	}

	cfg, err := s.registry.GetCollection(r.Context(), slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFoundError(w, "collection not found")
			return
		}
		s.metrics.StorageError("get_collection")
		observability.FromContext(r.Context()).WithError(err).WithField("slug", slug).Error("failed to get collection")
		writeInternal(w, r)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cfg)
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var cfg schema.CollectionConfig
	if !httputil.ParseJSONOrError(w, r, &cfg) {
		return
	}
	if cfg.Kind == "" {
		cfg.Kind = schema.KindCollection
	}

	if err := s.validator.Validate(&cfg); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	logger := observability.FromContext(r.Context()).WithField("slug", cfg.Slug)

	existing, err := s.registry.ListCollections(r.Context())
	if err != nil {
		s.metrics.StorageError("list_collections")
		logger.WithError(err).Error("failed to list collections")
		writeInternal(w, r)
		return
	}
	if err := schema.CheckComponentCollision(existing, &cfg); err != nil {
		httputil.WriteConflict(w, err.Error())
		return
	}

	if err := s.registry.CreateCollection(r.Context(), &cfg); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			httputil.WriteConflict(w, "collection already exists")
			return
		}
		s.metrics.StorageError("create_collection")
		logger.WithError(err).Error("failed to create collection")
		writeInternal(w, r)
		return
	}

	event := audit.NewEvent(r.Context(), audit.EventCollectionCreated, audit.StatusSuccess, cfg.Slug)
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		event.Subject = id.Subject
	}
	event.Metadata["fields"] = len(cfg.Fields)
	event.Metadata["kind"] = string(cfg.Kind)
	s.record(r, event)

	logger.WithField("fields", len(cfg.Fields)).Info("collection created")
	httputil.WriteCreated(w, &cfg)
}

func (s *Server) listFieldTypes(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, fieldTypeList{FieldTypes: schema.Catalog()})
}

// writeInternal answers with a generic 500 carrying only the request id
func writeInternal(w http.ResponseWriter, r *http.Request) {
	requestID := contextkeys.GetRequestID(r.Context())
	if requestID == "" {
		httputil.WriteInternalError(w, internalErrorMessage)
		return
	}
	httputil.WriteDetailedError(w, http.StatusInternalServerError, internalErrorMessage,
		map[string]string{"request_id": requestID})
}
