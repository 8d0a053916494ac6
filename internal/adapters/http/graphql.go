package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundingBox",
		Fields: graphql.Fields{
			"north": &graphql.Field{Type: graphql.Float},
			"south": &graphql.Field{Type: graphql.Float},
			"east":  &graphql.Field{Type: graphql.Float},
			"west":  &graphql.Field{Type: graphql.Float},
		},
	})

	jurisdictionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Jurisdiction",
		Fields: graphql.Fields{
			"name":         &graphql.Field{Type: graphql.String},
			"label":        &graphql.Field{Type: graphql.String},
			"municipality": &graphql.Field{Type: graphql.String},
			"province":     &graphql.Field{Type: graphql.String},
			"country":      &graphql.Field{Type: graphql.String},
			"center":       &graphql.Field{Type: locationType},
			"boundary":     &graphql.Field{Type: graphql.NewList(locationType)},
			"bounds":       &graphql.Field{Type: boundsType},
			"max_bounds":   &graphql.Field{Type: boundsType},
			"min_zoom":     &graphql.Field{Type: graphql.Int},
			"max_zoom":     &graphql.Field{Type: graphql.Int},
			"default_zoom": &graphql.Field{Type: graphql.Int},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "IncidentMarker",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"position": &graphql.Field{Type: locationType},
			"title":    &graphql.Field{Type: graphql.String},
			"status":   &graphql.Field{Type: graphql.String},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Report",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"type":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"location":    &graphql.Field{Type: locationType},
			"status":      &graphql.Field{Type: graphql.String},
			"reporter":    &graphql.Field{Type: graphql.String},
			"reported_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	alertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Alert",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.String},
			"title":     &graphql.Field{Type: graphql.String},
			"message":   &graphql.Field{Type: graphql.String},
			"type":      &graphql.Field{Type: graphql.String},
			"source":    &graphql.Field{Type: graphql.String},
			"issued_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	checkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeofenceCheck",
		Fields: graphql.Fields{
			"location":                  &graphql.Field{Type: locationType},
			"inside":                    &graphql.Field{Type: graphql.Boolean},
			"jurisdiction":              &graphql.Field{Type: graphql.String},
			"distance_to_center_meters": &graphql.Field{Type: graphql.Float},
			"message":                   &graphql.Field{Type: graphql.String},
		},
	})

	filterArgs := graphql.FieldConfigArgument{
		"search": &graphql.ArgumentConfig{Type: graphql.String},
		"types":  &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
		"status": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"jurisdiction": &graphql.Field{
				Type:        jurisdictionType,
				Description: "The barangay this service covers",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := deps.Geofence.View()
					return map[string]interface{}{
						"name":         v.Name,
						"label":        v.Label,
						"municipality": v.Municipality,
						"province":     v.Province,
						"country":      v.Country,
						"center":       v.Center,
						"boundary":     []domain.Location(v.Boundary),
						"bounds":       v.Bounds,
						"max_bounds":   v.MaxBounds,
						"min_zoom":     v.MinZoom,
						"max_zoom":     v.MaxZoom,
						"default_zoom": v.DefaultZoom,
					}, nil
				},
			},
			"contains": &graphql.Field{
				Type:        checkType,
				Description: "Whether a point lies inside the barangay boundary",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loc := domain.Location{Lat: p.Args["lat"].(float64), Lng: p.Args["lng"].(float64)}
					return deps.Geofence.Check(p.Context, loc), nil
				},
			},
			"incidents": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "Incident markers matching the filter",
				Args:        filterArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Incidents.Markers(p.Context, filterFromArgs(p.Args), nil)
				},
			},
			"reports": &graphql.Field{
				Type:        graphql.NewList(reportType),
				Description: "Reports matching the filter, newest first",
				Args:        filterArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Reports.List(p.Context, filterFromArgs(p.Args))
				},
			},
			"report": &graphql.Field{
				Type:        reportType,
				Description: "Get a report by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Reports.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"alerts": &graphql.Field{
				Type:        graphql.NewList(alertType),
				Description: "Latest community alerts",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Alerts.List(p.Context, p.Args["limit"].(int))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func filterFromArgs(args map[string]interface{}) domain.ReportFilter {
	var f domain.ReportFilter
	if s, ok := args["search"].(string); ok {
		f.Search = s
	}
	if types, ok := args["types"].([]interface{}); ok {
		for _, t := range types {
			if s, ok := t.(string); ok {
				f.Types = append(f.Types, s)
			}
		}
	}
	if statuses, ok := args["status"].([]interface{}); ok {
		for _, t := range statuses {
			if s, ok := t.(string); ok {
				f.Statuses = append(f.Statuses, domain.IncidentStatus(s))
			}
		}
	}
	return f
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil || req.Query == "" {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
