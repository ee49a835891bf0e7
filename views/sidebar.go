package views

import "taskboard-service/models"

// FolderGroup is one folder with the projects currently inside it.
type FolderGroup struct {
	Folder   models.Folder
	Projects []models.Project
}

// SidebarTree is the navigation projection: projects grouped under
// their folders, folderless projects, and projects shared with the
// user.
type SidebarTree struct {
	Groups []FolderGroup
	Loose  []models.Project
	Shared []models.Project
}

// BuildSidebar recomputes the tree from the current snapshots. A
// project referencing a folder that is no longer in the snapshot
// (deleted, reparent event not yet folded) falls back to the loose
// bucket rather than disappearing.
func BuildSidebar(folders []models.Folder, own, shared []models.Project) SidebarTree {
	tree := SidebarTree{Shared: shared}

	byFolder := make(map[string][]models.Project)
	for _, p := range own {
		if p.FolderID == nil {
			tree.Loose = append(tree.Loose, p)
			continue
		}
		byFolder[*p.FolderID] = append(byFolder[*p.FolderID], p)
	}

	known := make(map[string]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
		tree.Groups = append(tree.Groups, FolderGroup{
			Folder:   f,
			Projects: byFolder[f.ID],
		})
	}
	for _, p := range own {
		if p.FolderID != nil && !known[*p.FolderID] {
			tree.Loose = append(tree.Loose, p)
		}
	}

	return tree
}
