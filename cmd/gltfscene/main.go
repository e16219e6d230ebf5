package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/gltfscene/codec"
	"github.com/mogaika/gltfscene/components"
	"github.com/mogaika/gltfscene/config"
	"github.com/mogaika/gltfscene/extension"
	"github.com/mogaika/gltfscene/ndarray"
	"github.com/mogaika/gltfscene/scene"
	"github.com/mogaika/gltfscene/utils"
	"github.com/mogaika/gltfscene/web"
)

func main() {
	var cfgPath, in, out, dump, addr, saveCfg string
	var demo, serve, external, required bool
	flag.StringVar(&cfgPath, "config", config.DefaultPath, "Path to yaml config")
	flag.StringVar(&in, "in", "", "Input .gltf or .glb file")
	flag.StringVar(&out, "out", "", "Output .gltf or .glb file")
	flag.StringVar(&dump, "dump", "", "Dump decoded input: 'yaml' outline or 'spew' structures")
	flag.BoolVar(&demo, "demo", false, "Write a demo scene to -out")
	flag.BoolVar(&serve, "serve", false, "Start web service")
	flag.StringVar(&addr, "i", "", "Address of server, overrides config")
	flag.BoolVar(&external, "external", false, "Write .gltf buffers as sibling .bin files")
	flag.BoolVar(&required, "require", false, "Mark every used extension as required")
	flag.StringVar(&saveCfg, "saveconfig", "", "Write the effective config to this yaml file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Listen = addr
	}
	cfg.ExternalBuffers = cfg.ExternalBuffers || external
	cfg.RequireExtensions = cfg.RequireExtensions || required
	config.Set(cfg)
	if saveCfg != "" {
		if err := cfg.Save(saveCfg); err != nil {
			log.Fatal(err)
		}
		log.Printf("[main] config written to %q", saveCfg)
	}

	components.MustRegister(extension.Default)
	opts := options(extension.Default)

	switch {
	case serve:
		if err := web.StartServer(config.Get().Listen, extension.Default); err != nil {
			log.Fatal(err)
		}
	case demo:
		if out == "" {
			log.Fatal("-demo needs -out")
		}
		tree, err := demoScene()
		if err != nil {
			log.Fatal(err)
		}
		if err := write(tree, out, opts, config.Get()); err != nil {
			log.Fatal(err)
		}
		log.Printf("[main] demo scene written to %q", out)
	case in != "":
		tree, err := codec.DecodeFile(in, opts)
		if err != nil {
			log.Fatal(err)
		}
		switch dump {
		case "":
		case "yaml":
			data, err := yaml.Marshal(scene.NewOutline(tree))
			if err != nil {
				log.Fatal(err)
			}
			os.Stdout.Write(data)
		case "spew":
			for _, n := range tree.Nodes() {
				fmt.Printf("%s:\n", tree.Path(n.ID()))
				utils.Dump(n.Transform, n.Camera, n.Light, n.Material, n.Components())
			}
		default:
			log.Fatalf("unknown dump format %q", dump)
		}
		if out != "" {
			if err := write(tree, out, opts, config.Get()); err != nil {
				log.Fatal(err)
			}
			log.Printf("[main] %q converted to %q", in, out)
		}
	default:
		flag.PrintDefaults()
	}
}

// options builds codec options from the current config.
func options(reg *extension.Registry) codec.Options {
	cfg := config.Get()
	return codec.Options{
		Registry:          reg,
		Generator:         cfg.Generator,
		RequireExtensions: cfg.RequireExtensions,
		RootName:          cfg.RootName,
	}
}

func write(tree *scene.Tree, path string, opts codec.Options, cfg config.Config) error {
	doc, err := codec.Encode(tree, opts)
	if err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		if cfg.Binary {
			path += ".glb"
		} else {
			path += ".gltf"
		}
	}
	return codec.Save(doc, path, cfg.ExternalBuffers)
}

// demoScene builds a small simulation: an agent sphere chasing a goal
// cube on a floor, lit by a sun and seen by a camera.
func demoScene() (*scene.Tree, error) {
	tree, err := scene.NewTree("world")
	if err != nil {
		return nil, err
	}
	root := tree.Root().ID()

	floor, err := tree.Add(root, "floor")
	if err != nil {
		return nil, err
	}
	floor.Geometry = scene.NewPolyData(ndarray.FromVec3([][3]float32{
		{-5, 0, -5}, {5, 0, -5}, {5, 0, 5}, {-5, 0, 5},
	}), [][]uint32{{0, 3, 2, 1}})
	floor.Material = scene.DefaultMaterial()
	floor.Material.Name = "floor"
	floor.Material.BaseColor = mgl32.Vec4{0.4, 0.4, 0.4, 1}
	if err := floor.AddComponent(&components.Collider{Type: components.BoxCollider, Bound: [3]float32{10, 0.1, 10}}); err != nil {
		return nil, err
	}

	agent, err := tree.Add(root, "agent")
	if err != nil {
		return nil, err
	}
	agent.Geometry = cube(0.5)
	agent.Transform.SetTranslation(mgl32.Vec3{-3, 0.5, 0})
	ice := &components.PhysicMaterial{Name: "ice", DynamicFriction: 0.05, StaticFriction: 0.1}
	for _, c := range []scene.Component{
		components.NewRigidBody(1),
		&components.Collider{Type: components.BoxCollider, Bound: [3]float32{1, 1, 1}, PhysicMaterial: ice},
	} {
		if err := agent.AddComponent(c); err != nil {
			return nil, err
		}
	}

	goal, err := tree.Add(root, "goal")
	if err != nil {
		return nil, err
	}
	goal.Geometry = cube(0.5)
	goal.Material = scene.DefaultMaterial()
	goal.Material.BaseColor = mgl32.Vec4{0, 0.8, 0, 1}
	goal.Transform.SetTranslation(mgl32.Vec3{3, 0.5, 0})
	if err := goal.AddComponent(&components.RewardFunction{
		Name:           "reach_goal",
		Type:           components.DenseReward,
		EntityA:        scene.RefTo(agent),
		EntityB:        scene.RefTo(goal),
		DistanceMetric: "euclidean",
		Scalar:         1,
		Threshold:      0.5,
		IsTerminal:     true,
	}); err != nil {
		return nil, err
	}

	cam, err := tree.Add(root, "camera")
	if err != nil {
		return nil, err
	}
	cam.Camera = scene.NewPerspectiveCamera(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)
	cam.Transform.SetTranslation(mgl32.Vec3{0, 4, 10})
	cam.Transform.SetEulerRotation(mgl32.Vec3{mgl32.DegToRad(-20), 0, 0})
	if err := cam.AddComponent(&components.StateSensor{
		Name:            "agent_position",
		TargetEntity:    scene.RefTo(agent),
		ReferenceEntity: scene.RefTo(goal),
		Properties:      []string{"position", "velocity"},
	}); err != nil {
		return nil, err
	}

	sun, err := tree.Add(root, "sun")
	if err != nil {
		return nil, err
	}
	sun.Light = scene.NewLight(scene.DirectionalLight)
	sun.Light.Intensity = 2
	sun.Transform.SetEulerRotation(mgl32.Vec3{mgl32.DegToRad(-45), mgl32.DegToRad(30), 0})

	tree.SetGlobal(components.NewConfig())
	return tree, nil
}

func cube(h float32) *scene.PolyData {
	return scene.NewPolyData(ndarray.FromVec3([][3]float32{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}), [][]uint32{
		{0, 3, 2, 1}, {4, 5, 6, 7}, {0, 1, 5, 4},
		{2, 3, 7, 6}, {1, 2, 6, 5}, {0, 4, 7, 3},
	})
}
