package main

const (
	msgNoMetadata       = "No metadata provided"
	msgInvalidRequest   = "Invalid request data received"
	msgInvalidORCID     = "Invalid ORCID ID"
	msgORCIDFetchFailed = "Failed to fetch ORCID data"
	msgMintFailed       = "Failed to mint DOI"
	msgMintConnect      = "Failed to connect to DataCite API"
	msgMintNotReady     = "DOI registration is not configured on this server. Please contact the PARADIM data team."
	msgMintRetry        = "Failed to mint DOI. Please try again."
	msgORCIDError       = "ORCID Error: %s"
	msgValidationFailed = "Validation failed. Please try again."
	msgRenderFailed     = "An internal error occurred while rendering the page."

	// Log Prefixes
	lpConfig = "Config"
	lpWeb    = "Web"
	lpForm   = "Form"
	lpCLI    = "CLI"
)
