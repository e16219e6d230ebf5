package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mogaika/gltfscene/codec"
	"github.com/mogaika/gltfscene/config"
	"github.com/mogaika/gltfscene/extension"
)

// MaxUploadSize limits multipart uploads.
const MaxUploadSize = 64 << 20

type Server struct {
	reg *extension.Registry
}

func NewServer(reg *extension.Registry) *Server {
	if reg == nil {
		reg = extension.Default
	}
	return &Server{reg: reg}
}

// options builds codec options from the current config.
func (s *Server) options() codec.Options {
	cfg := config.Get()
	return codec.Options{
		Registry:          s.reg,
		Generator:         cfg.Generator,
		RequireExtensions: cfg.RequireExtensions,
		RootName:          cfg.RootName,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/extensions", s.HandlerExtensions).Methods("GET")
	r.HandleFunc("/json/inspect", s.HandlerInspect).Methods("POST")
	r.HandleFunc("/dump/inspect", s.HandlerDumpInspect).Methods("POST")
	r.HandleFunc("/convert/{format}", s.HandlerConvert).Methods("POST")
	return r
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	h = handlers.LoggingHandler(os.Stdout, h)
	return h
}

func StartServer(addr string, reg *extension.Registry) error {
	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, NewServer(reg).Handler())
}
