package models

// CategoryNode — узел дерева категорий витрины. Parent == 0 означает корень.
type CategoryNode struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int    `json:"parent"`
}

// CategoryTreeNode — форма, в которой таксономия приходит извне (лес с children).
type CategoryTreeNode struct {
	ID       int                `json:"id"`
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	Parent   int                `json:"parent"`
	Children []CategoryTreeNode `json:"children"`
}

// FlattenCategories разворачивает лес категорий в плоский словарь id -> узел.
func FlattenCategories(tree []CategoryTreeNode) map[int]CategoryNode {
	flat := make(map[int]CategoryNode)
	var walk func(nodes []CategoryTreeNode)
	walk = func(nodes []CategoryTreeNode) {
		for _, node := range nodes {
			flat[node.ID] = CategoryNode{
				ID:     node.ID,
				Name:   node.Name,
				Slug:   node.Slug,
				Parent: node.Parent,
			}
			if len(node.Children) > 0 {
				walk(node.Children)
			}
		}
	}
	walk(tree)
	return flat
}
