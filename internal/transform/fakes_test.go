package transform

import (
	"context"
	"fmt"

	"enricher/internal/boundary"
	"enricher/internal/registry"
	"enricher/pkg/platform/sentinel"
)

// Hand-rolled fakes for the registry slices. Each returns ErrNotFound for
// unknown ids and lets tests force an outage with err.

type fakeProjects struct {
	byID   map[string]registry.Project
	byName map[string]registry.Project
	types  map[string]registry.ProjectType
	err    error
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{
		byID:   map[string]registry.Project{},
		byName: map[string]registry.Project{},
		types:  map[string]registry.ProjectType{},
	}
}

func (f *fakeProjects) ByID(_ context.Context, _, projectID string) (registry.Project, error) {
	if f.err != nil {
		return registry.Project{}, f.err
	}
	p, ok := f.byID[projectID]
	if !ok {
		return registry.Project{}, fmt.Errorf("project %s: %w", projectID, sentinel.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProjects) ByName(_ context.Context, _, name string) (registry.Project, error) {
	if f.err != nil {
		return registry.Project{}, f.err
	}
	p, ok := f.byName[name]
	if !ok {
		return registry.Project{}, fmt.Errorf("project %q: %w", name, sentinel.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProjects) TypeByID(_ context.Context, _, typeID string) (registry.ProjectType, error) {
	if f.err != nil {
		return registry.ProjectType{}, f.err
	}
	pt, ok := f.types[typeID]
	if !ok {
		return registry.ProjectType{}, fmt.Errorf("project type %s: %w", typeID, sentinel.ErrNotFound)
	}
	return pt, nil
}

type fakeFacilities struct {
	m   map[string]registry.Facility
	err error
}

func (f *fakeFacilities) ByID(_ context.Context, _, facilityID string) (registry.Facility, error) {
	if f.err != nil {
		return registry.Facility{}, f.err
	}
	fac, ok := f.m[facilityID]
	if !ok {
		return registry.Facility{}, fmt.Errorf("facility %s: %w", facilityID, sentinel.ErrNotFound)
	}
	return fac, nil
}

type fakeUsers struct {
	m   map[string]registry.UserDisplay
	err error
}

func (f *fakeUsers) InfoByID(_ context.Context, _, userID string) (registry.UserDisplay, error) {
	if f.err != nil {
		return registry.UserDisplay{}, f.err
	}
	u, ok := f.m[userID]
	if !ok {
		return registry.UserDisplay{}, fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	return u, nil
}

type fakeProducts struct {
	names    map[string]string
	products map[string]registry.Product
	err      error
}

func (f *fakeProducts) NamesByIDs(_ context.Context, _ string, ids []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			names = append(names, name)
			continue
		}
		names = append(names, id)
	}
	return names, nil
}

func (f *fakeProducts) ProductByID(_ context.Context, _, productID string) (registry.Product, error) {
	if f.err != nil {
		return registry.Product{}, f.err
	}
	p, ok := f.products[productID]
	if !ok {
		return registry.Product{}, fmt.Errorf("product %s: %w", productID, sentinel.ErrNotFound)
	}
	return p, nil
}

type fakeBoundaries struct {
	byCode    map[string]*boundary.Tree
	byProject map[string]*boundary.Tree
	err       error
}

func newFakeBoundaries() *fakeBoundaries {
	return &fakeBoundaries{
		byCode:    map[string]*boundary.Tree{},
		byProject: map[string]*boundary.Tree{},
	}
}

func (f *fakeBoundaries) Resolve(_ context.Context, _, code string) (*boundary.Tree, error) {
	if f.err != nil {
		return nil, f.err
	}
	tree, ok := f.byCode[code]
	if !ok {
		return nil, fmt.Errorf("boundary %s: %w", code, sentinel.ErrNotFound)
	}
	return tree, nil
}

func (f *fakeBoundaries) ResolveByProject(_ context.Context, _, projectID string) (*boundary.Tree, error) {
	if f.err != nil {
		return nil, f.err
	}
	tree, ok := f.byProject[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s boundary: %w", projectID, sentinel.ErrNotFound)
	}
	return tree, nil
}

type fakeDefs struct {
	m   map[string]registry.ServiceDefinition
	err error
}

func (f *fakeDefs) ByID(_ context.Context, _, defID string) (registry.ServiceDefinition, error) {
	if f.err != nil {
		return registry.ServiceDefinition{}, f.err
	}
	def, ok := f.m[defID]
	if !ok {
		return registry.ServiceDefinition{}, fmt.Errorf("service definition %s: %w", defID, sentinel.ErrNotFound)
	}
	return def, nil
}

func villageTree() *boundary.Tree {
	return &boundary.Tree{
		Node: boundary.Node{Code: "VILLAGE_9", Label: "village", Name: "Alto"},
	}
}

func districtTree() *boundary.Tree {
	return &boundary.Tree{
		ParentNodes: []boundary.Node{
			{Code: "COUNTRY", Label: "country", Name: "Moz"},
		},
		Node: boundary.Node{Code: "DISTRICT_1", Label: "district", Name: "Norte", ParentCode: "COUNTRY"},
	}
}
