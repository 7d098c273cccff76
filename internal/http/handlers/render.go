package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, set := data["Title"]; !set {
		data["Title"] = "SmartPharma"
	}
	if rid, _ := c.Locals("requestid").(string); rid != "" {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}

func renderError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).Render("notfound", fiber.Map{"Title": "SmartPharma", "Message": message})
}
