// Package docs expone la definición OpenAPI que sirve /swagger/*.
// Mantenida a mano: cubre las rutas principales; el detalle fino vive
// en las anotaciones de cada handler.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Shelter Ops API",
    "description": "Backend multi-tenant para refugios de animales: ingreso y perfiles, historial médico, fosters, voluntariado, adopciones, billing y reportes.",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/health": {
      "get": {
        "summary": "Health check",
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/orgs": {
      "post": {
        "tags": ["organizations"],
        "summary": "Crear organización",
        "responses": {"201": {"description": "creada; el caller queda como admin"}}
      }
    },
    "/orgs/{orgID}/members": {
      "post": {
        "tags": ["members"],
        "summary": "Invitar miembro",
        "responses": {"201": {"description": "invitación creada"}}
      },
      "get": {
        "tags": ["members"],
        "summary": "Listar miembros",
        "responses": {"200": {"description": "miembros de la org"}}
      }
    },
    "/orgs/{orgID}/animals": {
      "post": {
        "tags": ["animals"],
        "summary": "Registrar ingreso",
        "responses": {
          "201": {"description": "animal creado"},
          "402": {"description": "tope del tier free alcanzado"}
        }
      },
      "get": {
        "tags": ["animals"],
        "summary": "Listar animales",
        "responses": {"200": {"description": "animales de la org"}}
      }
    },
    "/orgs/{orgID}/animals/{animalID}/records": {
      "post": {
        "tags": ["medical"],
        "summary": "Registrar entrada clínica",
        "responses": {"201": {"description": "registro creado"}}
      },
      "get": {
        "tags": ["medical"],
        "summary": "Historial clínico",
        "responses": {"200": {"description": "timeline del animal"}}
      }
    },
    "/orgs/{orgID}/fosters": {
      "post": {
        "tags": ["fosters"],
        "summary": "Abrir placement de foster",
        "responses": {"201": {"description": "placement activo"}}
      }
    },
    "/orgs/{orgID}/activities": {
      "post": {
        "tags": ["volunteers"],
        "summary": "Registrar horas voluntarias",
        "responses": {"201": {"description": "actividad registrada"}}
      }
    },
    "/orgs/{orgID}/adoptions": {
      "post": {
        "tags": ["adoptions"],
        "summary": "Registrar solicitud de adopción",
        "responses": {"201": {"description": "solicitud pending"}}
      }
    },
    "/billing/webhook": {
      "post": {
        "tags": ["billing"],
        "summary": "Webhook del proveedor de pagos",
        "responses": {
          "200": {"description": "procesado (o replay ignorado)"},
          "401": {"description": "firma inválida"}
        }
      }
    },
    "/orgs/{orgID}/reports/animals-by-status": {
      "get": {
        "tags": ["reports"],
        "summary": "Animales por estado",
        "responses": {
          "200": {"description": "totales por estado"},
          "402": {"description": "capability no habilitada"}
        }
      }
    }
  }
}`

type swaggerInfo struct{}

func (swaggerInfo) ReadDoc() string { return docTemplate }

func init() {
	swag.Register(swag.Name, swaggerInfo{})
}
