package gltf2

import (
	"fmt"
	gomath "math"
	"strconv"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// rootName names the node synthesized for scenes without exactly one root.
const rootName = "ROOT"

var identityMatrix = [16]float64(math.Identity())

type lightRef struct {
	Light int `json:"light"`
}

// roots returns the root nodes of the active scene. Documents without
// scenes use every node that is nobody's child.
func (im *importer) roots() []int {
	doc := im.doc
	if len(doc.Scenes) > 0 {
		active := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			active = *doc.Scene
		}
		if name := doc.Scenes[active].Name; name != "" {
			im.s.Name = name
		}
		return doc.Scenes[active].Nodes
	}
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// importNodes builds the arena. No roots yields a lone ROOT node, one root
// is imported as is, and several roots are merged under a synthetic ROOT.
func (im *importer) importNodes() error {
	roots := im.roots()
	switch len(roots) {
	case 0:
		im.s.Nodes = scene.WithRoot(scene.NewNode(rootName))
	case 1:
		tree, err := im.subtree(roots[0], 0)
		if err != nil {
			return err
		}
		im.s.Nodes = tree
	default:
		tree := scene.WithRoot(scene.NewNode(rootName))
		for _, r := range roots {
			sub, err := im.subtree(r, tree.Len())
			if err != nil {
				return err
			}
			tree.Merge(sub)
		}
		im.s.Nodes = tree
	}
	return nil
}

// subtree walks the hierarchy below root breadth-first. offset is the
// arena position the subtree will be merged at.
func (im *importer) subtree(root, offset int) (scene.NodeTree, error) {
	tree := scene.NewNodeTree()
	type item struct{ src, parent int }
	queue := []item{{root, scene.NoNode}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.src < 0 || it.src >= len(im.doc.Nodes) {
			return tree, fmt.Errorf("node %d: %w", it.src, ErrInvalidReference)
		}
		if _, seen := im.nodeToArena[it.src]; seen {
			return tree, fmt.Errorf("node %d appears twice in the hierarchy: %w", it.src, ErrInvalidReference)
		}
		node, err := im.node(it.src)
		if err != nil {
			return tree, err
		}
		idx, err := tree.Insert(node, it.parent)
		if err != nil {
			return tree, fmt.Errorf("node %d: %w", it.src, err)
		}
		im.nodeToArena[it.src] = idx + offset
		for _, c := range im.doc.Nodes[it.src].Children {
			queue = append(queue, item{c, idx})
		}
	}
	return tree, nil
}

func (im *importer) node(src int) (scene.Node, error) {
	gn := im.doc.Nodes[src]
	name := gn.Name
	if name == "" {
		name = strconv.Itoa(src)
	}
	node := scene.NewNode(name)
	node.Transform = nodeTransform(gn)

	if gn.Mesh != nil {
		if *gn.Mesh < 0 || *gn.Mesh >= len(im.spans) {
			return node, fmt.Errorf("node %d mesh %d: %w", src, *gn.Mesh, ErrInvalidReference)
		}
		node.MeshIndexes = im.spans[*gn.Mesh].Indexes()
	}
	if gn.Camera != nil {
		if *gn.Camera < 0 || *gn.Camera >= len(im.s.Cameras) {
			return node, fmt.Errorf("node %d camera %d: %w", src, *gn.Camera, ErrInvalidReference)
		}
		im.s.Cameras[*gn.Camera].Name = name
	}
	var lr lightRef
	ok, err := decodeExtension(gn.Extensions, extLightsPunctual, &lr)
	if err != nil {
		return node, fmt.Errorf("node %d %s: %w", src, extLightsPunctual, err)
	}
	if ok {
		if lr.Light < 0 || lr.Light >= len(im.s.Lights) {
			return node, fmt.Errorf("node %d light %d: %w", src, lr.Light, ErrInvalidReference)
		}
		im.s.Lights[lr.Light].Name = name
		if r, ok := im.lightRanges[lr.Light]; ok {
			node.Metadata = &scene.Metadata{}
			node.Metadata.SetFloat(scene.MetaLightRange, r)
		}
	}
	return node, nil
}

// nodeTransform returns the explicit matrix when present, otherwise the
// composition of translation, rotation and scale.
func nodeTransform(n *gltf.Node) math.Mat4 {
	if n.Matrix != identityMatrix && n.Matrix != [16]float64{} {
		return math.Mat4(n.Matrix)
	}
	r := math.QuatFromArray(n.Rotation)
	if n.Rotation == [4]float64{} {
		r = math.QuatIdentity()
	}
	s := math.Vec3From(n.Scale)
	if n.Scale == [3]float64{} {
		s = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	return math.Compose(math.Vec3From(n.Translation), r, s)
}

func (im *importer) importCameras() error {
	for i, gc := range im.doc.Cameras {
		c := scene.NewCamera(gc.Name)
		if c.Name == "" {
			c.Name = "camera_" + strconv.Itoa(i)
		}
		switch {
		case gc.Perspective != nil:
			p := gc.Perspective
			if p.AspectRatio != nil {
				c.Aspect = *p.AspectRatio
			}
			if c.Aspect > 0 {
				c.HorizontalFOV = gomath.Atan(gomath.Tan(p.Yfov/2) * c.Aspect)
			} else {
				c.HorizontalFOV = p.Yfov / 2
			}
			c.ClipNear = p.Znear
			if p.Zfar != nil {
				c.ClipFar = *p.Zfar
			}
		case gc.Orthographic != nil:
			o := gc.Orthographic
			c.OrthographicWidth = o.Xmag
			if o.Ymag != 0 {
				c.Aspect = o.Xmag / o.Ymag
			}
			c.ClipNear = o.Znear
			c.ClipFar = o.Zfar
		default:
			return fmt.Errorf("camera %d: no projection: %w", i, ErrInvalidReference)
		}
		im.s.Cameras = append(im.s.Cameras, c)
	}
	return nil
}

type punctualLight struct {
	Name      string        `json:"name,omitempty"`
	Type      string        `json:"type"`
	Color     *[3]float64   `json:"color,omitempty"`
	Intensity *float64      `json:"intensity,omitempty"`
	Range     *float64      `json:"range,omitempty"`
	Spot      *punctualSpot `json:"spot,omitempty"`
}

type punctualSpot struct {
	InnerConeAngle float64  `json:"innerConeAngle"`
	OuterConeAngle *float64 `json:"outerConeAngle,omitempty"`
}

type punctualLights struct {
	Lights []punctualLight `json:"lights"`
}

func (im *importer) importLights() error {
	var ext punctualLights
	ok, err := decodeExtension(im.doc.Extensions, extLightsPunctual, &ext)
	if err != nil || !ok {
		return err
	}
	for i, pl := range ext.Lights {
		var typ scene.LightType
		switch pl.Type {
		case "directional":
			typ = scene.LightDirectional
		case "point":
			typ = scene.LightPoint
		case "spot":
			typ = scene.LightSpot
		default:
			return fmt.Errorf("light %d: unknown type %q", i, pl.Type)
		}
		name := pl.Name
		if name == "" {
			name = "light_" + strconv.Itoa(i)
		}
		l := scene.NewLight(name, typ)
		color := [3]float64{1, 1, 1}
		if pl.Color != nil {
			color = *pl.Color
		}
		intensity := 1.0
		if pl.Intensity != nil {
			intensity = *pl.Intensity
		}
		l.Diffuse = math.Color3{R: color[0] * intensity, G: color[1] * intensity, B: color[2] * intensity}
		l.Specular = l.Diffuse
		l.Direction = math.Vec3{Z: -1}
		l.Up = math.Vec3{Y: 1}
		if typ != scene.LightDirectional {
			l.AttenuationConstant = 0
			l.AttenuationLinear = 0
			l.AttenuationQuadratic = 1
		}
		if pl.Spot != nil {
			l.InnerConeAngle = pl.Spot.InnerConeAngle
			l.OuterConeAngle = gomath.Pi / 4
			if pl.Spot.OuterConeAngle != nil {
				l.OuterConeAngle = *pl.Spot.OuterConeAngle
			}
		}
		if pl.Range != nil {
			im.lightRanges[i] = *pl.Range
		}
		im.s.Lights = append(im.s.Lights, l)
	}
	return nil
}
