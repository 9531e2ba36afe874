package posttype

// Builtins returns the post types WordPress core registers on every request.
func Builtins() []Definition {
	public := func(name, label, singular string) Definition {
		return Definition{
			Name:              name,
			Label:             label,
			SingularLabel:     singular,
			Public:            true,
			PubliclyQueryable: name != "page",
			ShowUI:            true,
			ShowInMenu:        true,
			ShowInNavMenus:    true,
			ShowInAdminBar:    true,
			ShowInREST:        true,
			Rewrite:           name != "attachment",
			QueryVar:          name != "attachment",
			CanExport:         true,
			EditLink:          "post.php?post=%d",
		}
	}
	internal := func(name, label string) Definition {
		return Definition{
			Name:              name,
			Label:             label,
			SingularLabel:     label,
			ExcludeFromSearch: true,
		}
	}

	return []Definition{
		public("post", "Posts", "Post"),
		public("page", "Pages", "Page"),
		public("attachment", "Media", "Media"),
		internal("revision", "Revisions"),
		internal("nav_menu_item", "Navigation Menu Items"),
		internal("custom_css", "Custom CSS"),
		internal("customize_changeset", "Changesets"),
		internal("oembed_cache", "oEmbed Responses"),
		internal("user_request", "User Requests"),
		internal("wp_block", "Patterns"),
		internal("wp_template", "Templates"),
		internal("wp_template_part", "Template Parts"),
		internal("wp_global_styles", "Global Styles"),
		internal("wp_navigation", "Navigation Menus"),
		internal("wp_font_family", "Font Families"),
		internal("wp_font_face", "Font Faces"),
	}
}
