package dag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"wlbind/internal/project"
)

type DocID uint32

type DocIndex struct {
	NameToID map[string]DocID
	IDToName []string
}

// собрать уникальные пути документов и импортов, sort.Strings, раздать ID по порядку
func BuildIndex(metas []project.DocumentMeta) DocIndex {
	uniq := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		if meta.Path != "" {
			uniq[meta.Path] = struct{}{}
		}
		for _, dep := range meta.Imports {
			if dep.Path == "" {
				continue
			}
			uniq[dep.Path] = struct{}{}
		}
	}

	paths := make([]string, 0, len(uniq))
	for p := range uniq {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	nameToID := make(map[string]DocID, len(paths))
	for i, p := range paths {
		id, err := safecast.Conv[DocID](i)
		if err != nil {
			panic(fmt.Errorf("document id overflow: %w", err))
		}
		nameToID[p] = id
	}

	return DocIndex{
		NameToID: nameToID,
		IDToName: paths,
	}
}
