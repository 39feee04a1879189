// Package docs Organization hierarchy API documentation
package docs

// @title Organization Hierarchy API
// @version 1.0
// @description Multi-level organization trees: browse, create children, inherit settings.

// @contact.name Platform Team
// @contact.email platform@orghierarchy.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8003
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// @tag.name organizations
// @tag.description Organization records
// @tag.name hierarchy
// @tag.description Tree traversal and child creation
// @tag.name admin
// @tag.description Forest-wide statistics
