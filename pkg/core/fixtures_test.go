package core

import (
	"context"
	"path"
	"testing"

	"github.com/oneconcern/depot/pkg/model"
	"github.com/oneconcern/depot/pkg/repo"
	"github.com/oneconcern/depot/pkg/storage"
	"github.com/oneconcern/depot/pkg/storage/localfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	home     *repo.Home
	packages storage.Store
}

func newTestRepo() *testRepo {
	packages := localfs.New(afero.NewMemMapFs())
	return &testRepo{
		home:     repo.New(localfs.New(afero.NewMemMapFs()), packages),
		packages: packages,
	}
}

// add imports a version with some files, given as path: content
func (r *testRepo) add(t testing.TB, metadata *model.Metadata, files map[string]string) {
	t.Helper()

	var binaries *repo.Binaries
	if len(files) > 0 {
		fs := afero.NewMemMapFs()
		for pth, content := range files {
			require.NoError(t, fs.MkdirAll(path.Dir(path.Join("in", pth)), 0700))
			require.NoError(t, afero.WriteFile(fs, path.Join("in", pth), []byte(content), 0600))
		}
		require.NoError(t, metadata.AddFiles(fs, "in", nil, model.NewFileParams()))
		binaries = repo.NewBinaries(localfs.New(afero.NewBasePathFs(fs, "in")), "")
	}
	require.NoError(t, r.home.Import(context.Background(), repo.NewVersion(metadata, binaries)))
}

func (r *testRepo) resolve(t testing.TB, id string) *repo.Version {
	t.Helper()
	v, err := r.home.Resolve(context.Background(), id)
	require.NoError(t, err)
	return v
}

func mustAddDependency(t testing.TB, m *model.Metadata, definition string, ops ...model.Operation) {
	t.Helper()
	_, err := m.AddDependency(definition, ops...)
	require.NoError(t, err)
}

// productFixture builds a product with a component dependency and an internal dependency:
//
//	test/product/1
//	├── test/comp/13 (name=dep-comp, path=comp)
//	│   └── test/comp-internal/3 (name=test, path=test, internal)
//	└── test/product-internal/2 (name=test, path=test, internal) cp *.txt dep-txt/
//
// The product copies all its *.txt files to product-txt/.
func productFixture(t testing.TB) *testRepo {
	r := newTestRepo()

	r.add(t, model.NewMetadata("test/comp-internal/3"), map[string]string{
		"comp-internal-not-included.txt": "internal",
	})

	comp := model.NewMetadata("test/comp/13")
	mustAddDependency(t, comp, "test/comp-internal/3,name=test,path=test,internal")
	r.add(t, comp, map[string]string{"aa.txt": "aa"})

	r.add(t, model.NewMetadata("test/product-internal/2"), map[string]string{
		"foo/product-internal.txt": "product-internal",
	})

	product := model.NewMetadata("test/product/1")
	mustAddDependency(t, product, "test/comp/13,name=dep-comp,path=comp")
	mustAddDependency(t, product, "test/product-internal/2,name=test,path=test,internal", model.Copy("dep-txt/", "*.txt"))
	product.AddOperation(model.Copy("product-txt/", "*.txt"))
	r.add(t, product, nil)

	return r
}

// sources summarizes a file map as virtual path: physical key
func sources(files FileMap) map[string]string {
	res := make(map[string]string, len(files))
	for pth, entry := range files {
		res[pth] = entry.Source.Key()
	}
	return res
}

var productFiles = map[string]string{
	"comp/aa.txt":                      "test/comp/13/aa.txt",
	"test/foo/product-internal.txt":    "test/product-internal/2/foo/product-internal.txt",
	"dep-txt/product-internal.txt":     "test/product-internal/2/foo/product-internal.txt",
	"product-txt/aa.txt":               "test/comp/13/aa.txt",
	"product-txt/product-internal.txt": "test/product-internal/2/foo/product-internal.txt",
}
