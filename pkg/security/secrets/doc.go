// Package secrets resolves the server-held upstream API key.
//
// In server credential mode the key is read once at startup from, in order:
//
//  1. credentials.api_key in the configuration file
//  2. an environment variable named after credentials.secret_name
//     ("openai-api-key" is read from OPENAI_API_KEY)
//  3. a file named credentials.secret_name in credentials.secrets_dir
//
// A key that is found nowhere is not a startup error. The relay answers
// each request with a server configuration error until one is provided.
package secrets
