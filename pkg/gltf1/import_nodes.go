package gltf1

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"

	"github.com/Faultbox/assetkit/pkg/math"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// rootName names the node synthesized for scenes without exactly one root.
const rootName = "ROOT"

// ErrDuplicateName is returned when two lights share a name, which would
// make their node binding ambiguous.
var ErrDuplicateName = errors.New("duplicate name")

// roots returns the root node ids of the active scene. Documents without
// scenes use every node that is nobody's child.
func (im *importer) roots() []string {
	doc := im.doc
	if doc.Scenes.Len() > 0 {
		sc, ok := doc.Scenes.Get(doc.Scene)
		if !ok {
			sc, _ = doc.Scenes.Get(doc.Scenes.Keys()[0])
		}
		if sc == nil {
			return nil
		}
		if sc.Name != "" {
			im.s.Name = sc.Name
		}
		return sc.Nodes
	}
	isChild := make(map[string]bool)
	for _, n := range doc.Nodes.All() {
		if n == nil {
			continue
		}
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []string
	for _, id := range doc.Nodes.Keys() {
		if !isChild[id] {
			roots = append(roots, id)
		}
	}
	return roots
}

// importNodes builds the arena. No roots yields a lone ROOT node, one root
// is imported as is, and several roots are merged under a synthetic ROOT.
func (im *importer) importNodes() error {
	positions := make(map[string]int, im.doc.Nodes.Len())
	for i, id := range im.doc.Nodes.Keys() {
		positions[id] = i
	}
	roots := im.roots()
	switch len(roots) {
	case 0:
		im.s.Nodes = scene.WithRoot(scene.NewNode(rootName))
	case 1:
		tree, err := im.subtree(roots[0], 0, positions)
		if err != nil {
			return err
		}
		im.s.Nodes = tree
	default:
		tree := scene.WithRoot(scene.NewNode(rootName))
		for _, r := range roots {
			sub, err := im.subtree(r, tree.Len(), positions)
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
func (im *importer) subtree(root string, offset int, positions map[string]int) (scene.NodeTree, error) {
	tree := scene.NewNodeTree()
	type item struct {
		id     string
		parent int
	}
	queue := []item{{root, scene.NoNode}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		gn, ok := im.doc.Nodes.Get(it.id)
		if !ok || gn == nil {
			return tree, fmt.Errorf("node %q: %w", it.id, ErrInvalidReference)
		}
		if _, seen := im.nodeToArena[it.id]; seen {
			return tree, fmt.Errorf("node %q appears twice in the hierarchy: %w", it.id, ErrInvalidReference)
		}
		node, err := im.node(it.id, gn, positions[it.id])
		if err != nil {
			return tree, err
		}
		idx, err := tree.Insert(node, it.parent)
		if err != nil {
			return tree, fmt.Errorf("node %q: %w", it.id, err)
		}
		im.nodeToArena[it.id] = idx + offset
		for _, c := range gn.Children {
			queue = append(queue, item{c, idx})
		}
	}
	return tree, nil
}

func (im *importer) node(id string, gn *Node, position int) (scene.Node, error) {
	name := gn.Name
	if name == "" {
		name = strconv.Itoa(position)
	}
	node := scene.NewNode(name)
	node.Transform = nodeTransform(gn)

	for _, meshID := range gn.Meshes {
		span, ok := im.spans[meshID]
		if !ok {
			return node, fmt.Errorf("node %q mesh %q: %w", id, meshID, ErrInvalidReference)
		}
		node.MeshIndexes = append(node.MeshIndexes, span.Indexes()...)
	}

	// Cameras and lights bind by name: the entity takes the node's name.
	if gn.Camera != "" {
		gc, ok := im.doc.Cameras.Get(gn.Camera)
		if !ok || gc == nil {
			return node, fmt.Errorf("node %q camera %q: %w", id, gn.Camera, ErrInvalidReference)
		}
		if ci, ok := im.cameras[cameraName(gn.Camera, gc)]; ok {
			im.s.Cameras[ci].Name = name
		}
	}
	if ext := gn.Extensions; ext != nil && ext.Common != nil && ext.Common.Light != "" {
		lid := ext.Common.Light
		l, ok := im.lightByID(lid)
		if !ok {
			return node, fmt.Errorf("node %q light %q: %w", id, lid, ErrInvalidReference)
		}
		if li, ok := im.lights[lightName(lid, l)]; ok {
			im.s.Lights[li].Name = name
		}
	}
	return node, nil
}

// nodeTransform returns the explicit matrix when present, otherwise the
// composition of translation, rotation and scale.
func nodeTransform(n *Node) math.Mat4 {
	if n.Matrix != nil {
		return math.Mat4(*n.Matrix)
	}
	var t math.Vec3
	if n.Translation != nil {
		t = math.Vec3From(*n.Translation)
	}
	r := math.QuatIdentity()
	if n.Rotation != nil {
		r = math.QuatFromArray(*n.Rotation)
	}
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if n.Scale != nil {
		s = math.Vec3From(*n.Scale)
	}
	return math.Compose(t, r, s)
}

func cameraName(id string, c *Camera) string {
	if c.Name != "" {
		return c.Name
	}
	return id
}

func lightName(id string, l *Light) string {
	if l.Name != "" {
		return l.Name
	}
	return id
}

// importCameras converts every camera. Cameras sharing a name collapse to
// the last one in the binding table.
func (im *importer) importCameras() error {
	for id, gc := range im.doc.Cameras.All() {
		if gc == nil {
			return fmt.Errorf("camera %q: %w", id, ErrInvalidReference)
		}
		c := scene.NewCamera(cameraName(id, gc))
		switch {
		case gc.Perspective != nil:
			p := gc.Perspective
			c.Aspect = p.AspectRatio
			if c.Aspect > 0 {
				c.HorizontalFOV = gomath.Atan(gomath.Tan(p.Yfov/2) * c.Aspect)
			} else {
				c.HorizontalFOV = p.Yfov / 2
			}
			c.ClipNear = p.Znear
			c.ClipFar = p.Zfar
		case gc.Orthographic != nil:
			o := gc.Orthographic
			c.OrthographicWidth = o.Xmag
			if o.Ymag != 0 {
				c.Aspect = o.Xmag / o.Ymag
			}
			c.ClipNear = o.Znear
			c.ClipFar = o.Zfar
		default:
			return fmt.Errorf("camera %q: no projection: %w", id, ErrInvalidReference)
		}
		im.cameras[c.Name] = len(im.s.Cameras)
		im.s.Cameras = append(im.s.Cameras, c)
	}
	return nil
}

func (im *importer) lightByID(id string) (*Light, bool) {
	ext := im.doc.Extensions
	if ext == nil || ext.Common == nil {
		return nil, false
	}
	l, ok := ext.Common.Lights.Get(id)
	return l, ok && l != nil
}

// importLights reads the KHR_materials_common lights.
func (im *importer) importLights() error {
	ext := im.doc.Extensions
	if ext == nil || ext.Common == nil {
		return nil
	}
	for id, gl := range ext.Common.Lights.All() {
		if gl == nil {
			return fmt.Errorf("light %q: %w", id, ErrInvalidReference)
		}
		var typ scene.LightType
		switch gl.Type {
		case "ambient":
			typ = scene.LightAmbient
		case "directional":
			typ = scene.LightDirectional
		case "point":
			typ = scene.LightPoint
		case "spot":
			typ = scene.LightSpot
		default:
			return fmt.Errorf("light %q: unknown type %q", id, gl.Type)
		}
		name := lightName(id, gl)
		if _, dup := im.lights[name]; dup {
			return fmt.Errorf("light %q: %w: %q", id, ErrDuplicateName, name)
		}
		l := scene.NewLight(name, typ)
		p := gl.Params()
		if p == nil {
			p = &LightParams{}
		}
		color := math.Color3{}
		if len(p.Color) >= 3 {
			color = math.Color3{R: p.Color[0], G: p.Color[1], B: p.Color[2]}
		}
		l.Ambient, l.Diffuse, l.Specular = color, color, color
		l.AttenuationConstant = floatOr(p.ConstantAttenuation, 0)
		l.AttenuationLinear = floatOr(p.LinearAttenuation, 1)
		l.AttenuationQuadratic = floatOr(p.QuadraticAttenuation, 1)
		falloff := floatOr(p.FalloffAngle, gomath.Pi/2)
		l.OuterConeAngle = falloff
		l.InnerConeAngle = falloff * (1 - 1/(1+p.FalloffExponent))
		l.Direction = math.Vec3{Z: -1}
		l.Up = math.Vec3{Y: 1}
		im.lights[name] = len(im.s.Lights)
		im.s.Lights = append(im.s.Lights, l)
	}
	return nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
