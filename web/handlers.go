package web

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/gltfscene/codec"
	"github.com/mogaika/gltfscene/scene"
	"github.com/mogaika/gltfscene/webutils"
)

type extensionInfo struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Required bool   `json:"required,omitempty"`
	Builtin  bool   `json:"builtin,omitempty"`
}

func (s *Server) HandlerExtensions(w http.ResponseWriter, r *http.Request) {
	reg := s.reg
	list := make([]extensionInfo, 0)
	for _, name := range reg.SortedNames() {
		d, _ := reg.Lookup(name)
		list = append(list, extensionInfo{
			Name:     d.Name,
			Scope:    d.Scope.String(),
			Required: d.Required,
			Builtin:  d.Builtin,
		})
	}
	webutils.WriteJson(w, list)
}

type inspectResult struct {
	Generator string         `json:"generator"`
	Used      []string       `json:"extensions_used"`
	Required  []string       `json:"extensions_required"`
	Nodes     int            `json:"nodes"`
	Meshes    int            `json:"meshes"`
	Tree      *scene.Outline `json:"tree"`
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return data, true
}

func (s *Server) inspect(w http.ResponseWriter, r *http.Request) (*inspectResult, bool) {
	data, ok := s.readUpload(w, r)
	if !ok {
		return nil, false
	}
	doc, err := codec.Read(bytes.NewReader(data))
	if err != nil {
		webutils.WriteError(w, http.StatusBadRequest, err)
		return nil, false
	}
	tree, err := codec.Decode(doc, s.options())
	if err != nil {
		webutils.WriteError(w, http.StatusUnprocessableEntity, err)
		return nil, false
	}
	return &inspectResult{
		Generator: doc.Asset.Generator,
		Used:      doc.ExtensionsUsed,
		Required:  doc.ExtensionsRequired,
		Nodes:     len(doc.Nodes),
		Meshes:    len(doc.Meshes),
		Tree:      scene.NewOutline(tree),
	}, true
}

func (s *Server) HandlerInspect(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.inspect(w, r); ok {
		webutils.WriteJson(w, res)
	}
}

func (s *Server) HandlerDumpInspect(w http.ResponseWriter, r *http.Request) {
	if res, ok := s.inspect(w, r); ok {
		webutils.WriteJsonFile(w, res, res.Tree.Name)
	}
}

// convertOptions is the optional "options" upload of a convert request.
type convertOptions struct {
	Generator         *string `json:"generator"`
	RequireExtensions *bool   `json:"require_extensions"`
}

func (s *Server) HandlerConvert(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	if format != "glb" && format != "gltf" {
		webutils.WriteError(w, http.StatusBadRequest, errors.Errorf("Unknown format %q", format))
		return
	}
	data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	opts := s.options()
	if _, ok := r.MultipartForm.File["options"]; ok {
		var co convertOptions
		if err := webutils.ReadJsonFile(r, "options", &co); err != nil {
			webutils.WriteError(w, http.StatusBadRequest, err)
			return
		}
		if co.Generator != nil {
			opts.Generator = *co.Generator
		}
		if co.RequireExtensions != nil {
			opts.RequireExtensions = *co.RequireExtensions
		}
	}

	tree, err := codec.DecodeBytes(data, opts)
	if err != nil {
		webutils.WriteError(w, http.StatusUnprocessableEntity, err)
		return
	}
	doc, err := codec.Encode(tree, opts)
	if err != nil {
		webutils.WriteError(w, http.StatusUnprocessableEntity, err)
		return
	}

	var buf bytes.Buffer
	contentType := "model/gltf-binary"
	if format == "glb" {
		err = codec.WriteBinary(&buf, doc)
	} else {
		contentType = "model/gltf+json"
		err = codec.WriteJSON(&buf, doc)
	}
	if err != nil {
		webutils.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	webutils.WriteFile(w, &buf, tree.Root().Name()+"."+format, contentType)
}
