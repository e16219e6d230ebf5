package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/gltfscene/codec"
	"github.com/mogaika/gltfscene/components"
	"github.com/mogaika/gltfscene/config"
	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/ndarray"
	"github.com/mogaika/gltfscene/scene"
)

func testServer(t *testing.T) (*httptest.Server, codec.Options) {
	reg := extension.NewRegistry()
	require.NoError(t, components.Register(reg))
	opts := codec.Options{Registry: reg}
	srv := httptest.NewServer(NewServer(reg).Handler())
	t.Cleanup(srv.Close)
	return srv, opts
}

func sampleGLB(t *testing.T, opts codec.Options) []byte {
	tree, err := scene.NewTree("world")
	require.NoError(t, err)
	n, err := tree.Add(tree.Root().ID(), "tri")
	require.NoError(t, err)
	n.Geometry = scene.NewPolyData(ndarray.FromVec3([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}), [][]uint32{{0, 1, 2}})
	require.NoError(t, n.AddComponent(components.NewRigidBody(1)))

	data, err := codec.EncodeBinary(tree, opts)
	require.NoError(t, err)
	return data
}

func upload(t *testing.T, url string, data []byte) *http.Response {
	return uploadFiles(t, url, map[string][]byte{"data": data})
}

func uploadFiles(t *testing.T, url string, files map[string][]byte) *http.Response {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, data := range files {
		fw, err := mw.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, opts codec.Options) (*gltf.Document, *scene.Tree) {
	var body bytes.Buffer
	_, err := body.ReadFrom(resp.Body)
	require.NoError(t, err)
	doc, err := codec.Read(bytes.NewReader(body.Bytes()))
	require.NoError(t, err)
	tree, err := codec.Decode(doc, opts)
	require.NoError(t, err)
	return doc, tree
}

func TestExtensions(t *testing.T) {
	srv, _ := testServer(t)

	resp, err := http.Get(srv.URL + "/json/extensions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []extensionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	byName := make(map[string]extensionInfo)
	for _, e := range list {
		byName[e.Name] = e
	}
	assert.True(t, byName[extension.LightsPunctual].Builtin)
	assert.Equal(t, "component", byName[components.PhysicMaterialExtension].Scope)
	assert.Equal(t, "document", byName[components.ConfigExtension].Scope)
}

func TestInspect(t *testing.T) {
	srv, opts := testServer(t)

	resp := upload(t, srv.URL+"/json/inspect", sampleGLB(t, opts))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res inspectResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, codec.DefaultGenerator, res.Generator)
	assert.Equal(t, []string{components.RigidBodyExtension}, res.Used)
	assert.Equal(t, 2, res.Nodes)
	require.NotNil(t, res.Tree)
	require.Len(t, res.Tree.Children, 1)
	assert.Equal(t, "tri", res.Tree.Children[0].Name)
	assert.Equal(t, []string{components.RigidBodyExtension}, res.Tree.Children[0].Components)
}

func TestInspectRejectsGarbage(t *testing.T) {
	srv, _ := testServer(t)

	resp := upload(t, srv.URL+"/json/inspect", []byte("not a container"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConvert(t *testing.T) {
	srv, opts := testServer(t)
	glb := sampleGLB(t, opts)

	resp := upload(t, srv.URL+"/convert/gltf", glb)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "model/gltf+json", resp.Header.Get("Content-Type"))
	_, tree := decodeResponse(t, resp, opts)
	n, ok := tree.FindByName("tri")
	require.True(t, ok)
	assert.Equal(t, 3, n.Geometry.NumVerts())

	resp = upload(t, srv.URL+"/convert/obj", glb)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConvertUsesConfig(t *testing.T) {
	old := config.Get()
	defer config.Set(old)
	cfg := config.Default()
	cfg.Generator = "configured"
	config.Set(cfg)

	srv, opts := testServer(t)
	glb := sampleGLB(t, opts)

	resp := upload(t, srv.URL+"/convert/glb", glb)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, _ := decodeResponse(t, resp, opts)
	assert.Equal(t, "configured", doc.Asset.Generator)
	assert.Empty(t, doc.ExtensionsRequired)

	resp = uploadFiles(t, srv.URL+"/convert/glb", map[string][]byte{
		"data":    glb,
		"options": []byte(`{"generator":"uploaded","require_extensions":true}`),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc, _ = decodeResponse(t, resp, opts)
	assert.Equal(t, "uploaded", doc.Asset.Generator)
	assert.Equal(t, []string{components.RigidBodyExtension}, doc.ExtensionsRequired)

	resp = uploadFiles(t, srv.URL+"/convert/glb", map[string][]byte{
		"data":    glb,
		"options": []byte(`not json`),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDumpInspect(t *testing.T) {
	srv, opts := testServer(t)

	resp := upload(t, srv.URL+"/dump/inspect", sampleGLB(t, opts))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="world.json"`, resp.Header.Get("Content-Disposition"))

	var res inspectResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "world", res.Tree.Name)
}
