package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Engagement API",
        "description": "Student engagement and academic performance reports per tenant",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Engagement",
            "description": "Per-student metrics, grade summaries and trends"
        },
        {
            "name": "System",
            "description": "Health and runtime statistics"
        }
    ],
    "paths": {
        "/engagement/report": {
            "get": {
                "tags": [
                    "Engagement"
                ],
                "summary": "Full engagement report",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "type": "string",
                        "required": true,
                        "description": "Tenant ID (tenantId query parameter also accepted)"
                    },
                    {
                        "name": "windowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Daily trend window, default 30"
                    },
                    {
                        "name": "riskWindowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Inactivity days that flag a student at risk, default 14"
                    },
                    {
                        "name": "termCount",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 4,
                        "description": "Number of quarter buckets before Current, default 4"
                    },
                    {
                        "name": "cohort",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to one grade level"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Missing tenant or invalid query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Fact source failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/engagement/students": {
            "get": {
                "tags": [
                    "Engagement"
                ],
                "summary": "Per-student engagement table",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "type": "string",
                        "required": true,
                        "description": "Tenant ID (tenantId query parameter also accepted)"
                    },
                    {
                        "name": "windowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Daily trend window, default 30"
                    },
                    {
                        "name": "riskWindowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Inactivity days that flag a student at risk, default 14"
                    },
                    {
                        "name": "termCount",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 4,
                        "description": "Number of quarter buckets before Current, default 4"
                    },
                    {
                        "name": "cohort",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to one grade level"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Missing tenant or invalid query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Fact source failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/engagement/students/{id}": {
            "get": {
                "tags": [
                    "Engagement"
                ],
                "summary": "Engagement metrics for one student",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "type": "string",
                        "required": true,
                        "description": "Tenant ID (tenantId query parameter also accepted)"
                    },
                    {
                        "name": "windowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Daily trend window, default 30"
                    },
                    {
                        "name": "riskWindowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Inactivity days that flag a student at risk, default 14"
                    },
                    {
                        "name": "termCount",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 4,
                        "description": "Number of quarter buckets before Current, default 4"
                    },
                    {
                        "name": "cohort",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to one grade level"
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Missing tenant or invalid query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Fact source failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "404": {
                        "description": "Student not found",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/engagement/cohorts": {
            "get": {
                "tags": [
                    "Engagement"
                ],
                "summary": "Per-grade summary table",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "type": "string",
                        "required": true,
                        "description": "Tenant ID (tenantId query parameter also accepted)"
                    },
                    {
                        "name": "windowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Daily trend window, default 30"
                    },
                    {
                        "name": "riskWindowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Inactivity days that flag a student at risk, default 14"
                    },
                    {
                        "name": "termCount",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 4,
                        "description": "Number of quarter buckets before Current, default 4"
                    },
                    {
                        "name": "cohort",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to one grade level"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Missing tenant or invalid query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Fact source failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/engagement/at-risk": {
            "get": {
                "tags": [
                    "Engagement"
                ],
                "summary": "At-risk intervention list",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "type": "string",
                        "required": true,
                        "description": "Tenant ID (tenantId query parameter also accepted)"
                    },
                    {
                        "name": "windowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Daily trend window, default 30"
                    },
                    {
                        "name": "riskWindowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Inactivity days that flag a student at risk, default 14"
                    },
                    {
                        "name": "termCount",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 4,
                        "description": "Number of quarter buckets before Current, default 4"
                    },
                    {
                        "name": "cohort",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to one grade level"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Missing tenant or invalid query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Fact source failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/engagement/trends/daily": {
            "get": {
                "tags": [
                    "Engagement"
                ],
                "summary": "Daily active students",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "type": "string",
                        "required": true,
                        "description": "Tenant ID (tenantId query parameter also accepted)"
                    },
                    {
                        "name": "windowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Daily trend window, default 30"
                    },
                    {
                        "name": "riskWindowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Inactivity days that flag a student at risk, default 14"
                    },
                    {
                        "name": "termCount",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 4,
                        "description": "Number of quarter buckets before Current, default 4"
                    },
                    {
                        "name": "cohort",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to one grade level"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Missing tenant or invalid query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Fact source failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/engagement/trends/terms": {
            "get": {
                "tags": [
                    "Engagement"
                ],
                "summary": "Average scores per term and grade",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "X-Tenant-ID",
                        "in": "header",
                        "type": "string",
                        "required": true,
                        "description": "Tenant ID (tenantId query parameter also accepted)"
                    },
                    {
                        "name": "windowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Daily trend window, default 30"
                    },
                    {
                        "name": "riskWindowDays",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 365,
                        "description": "Inactivity days that flag a student at risk, default 14"
                    },
                    {
                        "name": "termCount",
                        "in": "query",
                        "type": "integer",
                        "minimum": 1,
                        "maximum": 4,
                        "description": "Number of quarter buckets before Current, default 4"
                    },
                    {
                        "name": "cohort",
                        "in": "query",
                        "type": "string",
                        "description": "Restrict to one grade level"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "400": {
                        "description": "Missing tenant or invalid query",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    },
                    "500": {
                        "description": "Fact source failure",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Runtime and cache statistics",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Envelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "Series": {
            "type": "object",
            "properties": {
                "labels": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "values": {
                    "type": "array",
                    "items": {
                        "type": "number"
                    }
                }
            }
        },
        "Table": {
            "type": "object",
            "properties": {
                "columns": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "rows": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "additionalProperties": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
