package view

import "github.com/goliatone/go-crudgen/pkg/naming"

// Endpoint kinds.
const (
	KindList     = "list"
	KindCreate   = "create"
	KindGet      = "get"
	KindUpdate   = "update"
	KindDelete   = "delete"
	KindChildren = "children"
	KindLinks    = "links"
	KindLink     = "link"
	KindUnlink   = "unlink"
	KindUpload   = "upload"
)

// APIPrefix is the mount point of every entity router.
const APIPrefix = "/api"

// EndpointView is one HTTP operation of the generated API.
type EndpointView struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Kind        string
	Entity      string
	// Target is the entity returned by relation endpoints.
	Target string
	// Field is the JSON name of the uploaded file field.
	Field  string
	Single bool
	Tag    string
}

func buildEndpoints(entity *EntityView) []EndpointView {
	base := APIPrefix + "/" + entity.Route
	item := base + "/{id}"
	add := func(out []EndpointView, ep EndpointView) []EndpointView {
		ep.Entity = entity.GoName
		ep.Tag = entity.GoName
		return append(out, ep)
	}

	var out []EndpointView
	out = add(out, EndpointView{
		Method: "GET", Path: base, Kind: KindList,
		OperationID: "list" + entity.PluralGoName,
		Summary:     "List " + naming.Plural(entity.Label),
	})
	out = add(out, EndpointView{
		Method: "POST", Path: base, Kind: KindCreate,
		OperationID: "create" + entity.GoName,
		Summary:     "Create a " + entity.Label,
	})
	if !entity.HasIdentity {
		return out
	}
	out = add(out, EndpointView{
		Method: "GET", Path: item, Kind: KindGet,
		OperationID: "get" + entity.GoName,
		Summary:     "Get a " + entity.Label,
	})
	out = add(out, EndpointView{
		Method: "PATCH", Path: item, Kind: KindUpdate,
		OperationID: "update" + entity.GoName,
		Summary:     "Update a " + entity.Label,
	})
	out = add(out, EndpointView{
		Method: "DELETE", Path: item, Kind: KindDelete,
		OperationID: "delete" + entity.GoName,
		Summary:     "Delete a " + entity.Label,
	})

	for _, child := range entity.Children {
		out = add(out, EndpointView{
			Method: "GET", Path: item + "/" + child.Route, Kind: KindChildren,
			OperationID: child.Handler + "Of" + entity.GoName,
			Summary:     "Related " + child.Route + " of a " + entity.Label,
			Target:      child.Target,
			Single:      child.Single,
		})
	}
	for _, link := range entity.Links {
		path := item + "/" + link.Route
		out = add(out, EndpointView{
			Method: "GET", Path: path, Kind: KindLinks,
			OperationID: link.ListHandler + "Of" + entity.GoName,
			Summary:     "Linked " + link.Route + " of a " + entity.Label,
			Target:      link.Target,
		})
		out = add(out, EndpointView{
			Method: "PUT", Path: path + "/{targetId}", Kind: KindLink,
			OperationID: link.LinkHandler + "Of" + entity.GoName,
			Summary:     "Link " + link.Route + " to a " + entity.Label,
			Target:      link.Target,
		})
		out = add(out, EndpointView{
			Method: "DELETE", Path: path + "/{targetId}", Kind: KindUnlink,
			OperationID: link.UnlinkHandler + "Of" + entity.GoName,
			Summary:     "Unlink " + link.Route + " from a " + entity.Label,
			Target:      link.Target,
		})
	}
	for _, field := range entity.FileFields {
		out = add(out, EndpointView{
			Method: "POST", Path: item + "/" + field.Route, Kind: KindUpload,
			OperationID: "upload" + entity.GoName + field.GoName,
			Summary:     "Upload the " + field.Label + " of a " + entity.Label,
			Field:       field.JSONName,
		})
	}
	return out
}
